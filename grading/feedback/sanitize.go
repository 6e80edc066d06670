/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package feedback

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// thinkingSegments match internal-reasoning artifacts some backends leak
// into the visible response.
var thinkingSegments = []*regexp.Regexp{
	regexp.MustCompile(`(?s)\[thinking\].*?\[/thinking\]`),
	regexp.MustCompile(`(?s)<thinking>.*?</thinking>`),
}

// metaPhrases are line-leading meta-commentary openers that add nothing for
// a student reader.
var metaPhrases = []string{
	"As an AI",
	"As a language model",
	"Let me analyze",
	"Let me review",
	"I'll analyze",
	"Sure, here",
	"Certainly, here",
}

// sanitize cleans known backend quirks out of a raw model response before
// any parsing is attempted.
func sanitize(response, echoedPrompt string) string {
	out := strings.TrimSpace(response)

	// Some backends repeat the prompt verbatim before answering.
	if p := strings.TrimSpace(echoedPrompt); p != "" && strings.HasPrefix(out, p) {
		out = strings.TrimSpace(strings.TrimPrefix(out, p))
	}

	for _, re := range thinkingSegments {
		out = re.ReplaceAllString(out, "")
	}

	var kept []string
	for _, line := range strings.Split(out, "\n") {
		if isMetaCommentary(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isMetaCommentary(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, phrase := range metaPhrases {
		if strings.HasPrefix(trimmed, phrase) {
			return true
		}
	}
	return false
}

// extractObject pulls the first balanced JSON object out of text that may
// surround it with prose or markdown fences. Brace counting is string-aware
// so braces inside JSON strings do not unbalance the scan.
func extractObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return "", fmt.Errorf("no JSON object found in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unbalanced JSON object in response")
}

// parsePayload sanitizes, extracts, and unmarshals a model response. Strict
// unmarshal failures get one jsonrepair pass before giving up.
func parsePayload[T any](response, echoedPrompt string) (T, error) {
	var payload T

	cleaned := sanitize(response, echoedPrompt)
	obj, err := extractObject(cleaned)
	if err != nil {
		return payload, err
	}

	if err := json.Unmarshal([]byte(obj), &payload); err == nil {
		return payload, nil
	}

	repaired, err := jsonrepair.JSONRepair(obj)
	if err != nil {
		return payload, fmt.Errorf("repairing response JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return payload, fmt.Errorf("parsing response JSON: %w", err)
	}
	return payload, nil
}

// sanitizeFreeText cleans reasoning artifacts and meta-commentary from a
// free-text field after parsing, in case the model embedded them inside JSON
// string values.
func sanitizeFreeText(s string) string {
	out := s
	for _, re := range thinkingSegments {
		out = re.ReplaceAllString(out, "")
	}
	if isMetaCommentary(out) {
		if idx := strings.IndexAny(out, ".!"); idx != -1 && idx+1 < len(out) {
			out = out[idx+1:]
		}
	}
	return strings.TrimSpace(out)
}
