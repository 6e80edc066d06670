/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package feedback

import (
	"strings"
	"testing"
)

func TestSanitizeStripsEchoedPrompt(t *testing.T) {
	prompt := "Evaluate the student's code against the rubric."
	response := prompt + "\n\n{\"summary\": \"good\"}"

	got := sanitize(response, prompt)
	if strings.Contains(got, "Evaluate the student's code") {
		t.Errorf("sanitize() = %q, echoed prompt survived", got)
	}
	if !strings.Contains(got, `"summary"`) {
		t.Errorf("sanitize() = %q, payload lost", got)
	}
}

func TestSanitizeKeepsNonEchoedResponse(t *testing.T) {
	response := `{"summary": "good"}`
	if got := sanitize(response, "a completely different prompt"); got != response {
		t.Errorf("sanitize() = %q, wanted = %q", got, response)
	}
}

func TestSanitizeRemovesThinkingSegments(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "bracketed", response: "[thinking]\nscore should be low\n[/thinking]\n{\"summary\": \"ok\"}"},
		{name: "tagged", response: "<thinking>hmm, tricky</thinking>{\"summary\": \"ok\"}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitize(tt.response, "")
			if strings.Contains(got, "thinking") {
				t.Errorf("sanitize() = %q, thinking segment survived", got)
			}
			if !strings.Contains(got, `"summary"`) {
				t.Errorf("sanitize() = %q, payload lost", got)
			}
		})
	}
}

func TestSanitizeRemovesMetaCommentary(t *testing.T) {
	response := "Let me analyze this submission.\nAs an AI, I should be thorough.\n{\"summary\": \"ok\"}"

	got := sanitize(response, "")
	if strings.Contains(got, "Let me analyze") || strings.Contains(got, "As an AI") {
		t.Errorf("sanitize() = %q, meta commentary survived", got)
	}
}

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "bare object",
			text: `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "surrounded by prose",
			text: "Here is my assessment:\n{\"a\": 1}\nHope that helps!",
			want: `{"a": 1}`,
		},
		{
			name: "markdown fence",
			text: "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "braces inside strings",
			text: `{"code": "if (x) { y() }"}`,
			want: `{"code": "if (x) { y() }"}`,
		},
		{
			name: "nested objects",
			text: `{"outer": {"inner": 2}} trailing`,
			want: `{"outer": {"inner": 2}}`,
		},
		{
			name:    "no object",
			text:    "no structured content here",
			wantErr: true,
		},
		{
			name:    "unbalanced",
			text:    `{"a": 1`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractObject(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("extractObject() error = %v, wantErr = %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("extractObject() = %q, wanted = %q", got, tt.want)
			}
		})
	}
}

func TestParsePayloadRepairsMalformedJSON(t *testing.T) {
	// Trailing comma fails strict unmarshal but is repairable.
	response := `{"summary": "solid work", "findings": [],}`

	got, err := parsePayload[technicalPayload](response, "")
	if err != nil {
		t.Fatalf("parsePayload() error = %v", err)
	}
	if got.Summary != "solid work" {
		t.Errorf("Summary = %q, wanted = %q", got.Summary, "solid work")
	}
}

func TestParsePayloadRejectsGarbage(t *testing.T) {
	if _, err := parsePayload[technicalPayload]("I cannot help with that.", ""); err == nil {
		t.Error("parsePayload() error = nil, wanted error for non-JSON response")
	}
}

func TestSanitizeFreeText(t *testing.T) {
	got := sanitizeFreeText("<thinking>low score</thinking>The pipeline misses the filter step.")
	if got != "The pipeline misses the filter step." {
		t.Errorf("sanitizeFreeText() = %q", got)
	}
}
