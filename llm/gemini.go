/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/gradeflow/llm/retry"
	"chainguard.dev/gradeflow/metrics"
	"github.com/chainguard-dev/clog"
	"google.golang.org/genai"
)

// Gemini is a Completer backed by the Google AI GenerateContent API.
type Gemini struct {
	client *genai.Client
	settings
	genai *metrics.GenAI
}

// NewGemini creates a Gemini-backed completer.
func NewGemini(client *genai.Client, opts ...Option) (*Gemini, error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	s := defaultSettings("gemini-2.5-flash")
	if err := apply(&s, opts); err != nil {
		return nil, err
	}
	return &Gemini{client: client, settings: s, genai: metrics.NewGenAI()}, nil
}

// Model implements Completer.
func (g *Gemini) Model() string { return g.model }

// Complete implements Completer.
func (g *Gemini) Complete(ctx context.Context, req Request) (Response, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     ptr(float32(g.temperature)),
		MaxOutputTokens: int32(g.maxTokens),
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	clog.FromContext(ctx).With("model", g.model).
		With("prompt_length", len(req.Prompt)).
		Info("Requesting Gemini completion")

	response, err := retry.Do(ctx, g.retry, "complete", isRetryableGeminiError, func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), config)
	})
	if err != nil {
		g.genai.RecordCompletion(ctx, g.model, "error")
		return Response{}, fmt.Errorf("gemini completion: %w", err)
	}

	text := response.Text()
	if text == "" {
		g.genai.RecordCompletion(ctx, g.model, "error")
		return Response{}, errors.New("no text content in Gemini response")
	}

	var usage Usage
	if response.UsageMetadata != nil {
		usage = Usage{
			PromptTokens:     int64(response.UsageMetadata.PromptTokenCount),
			CompletionTokens: int64(response.UsageMetadata.CandidatesTokenCount),
		}
		g.genai.RecordTokens(ctx, g.model, usage.PromptTokens, usage.CompletionTokens)
	}
	g.genai.RecordCompletion(ctx, g.model, "ok")

	return Response{Text: text, Usage: usage}, nil
}

// isRetryableGeminiError returns true for rate limit, quota exhaustion, and
// transient server errors. The genai SDK does not expose a typed status
// code, so this matches on the error text.
func isRetryableGeminiError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED") ||
		strings.Contains(msg, "Resource exhausted") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota exceeded") ||
		strings.Contains(msg, "Overloaded") ||
		strings.Contains(msg, "server error")
}

func ptr[T any](v T) *T {
	return &v
}
