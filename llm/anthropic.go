/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package llm

import (
	"context"
	"errors"
	"fmt"

	"chainguard.dev/gradeflow/llm/retry"
	"chainguard.dev/gradeflow/metrics"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
)

// Anthropic is a Completer backed by the Claude Messages API.
type Anthropic struct {
	client anthropic.Client
	settings
	genai *metrics.GenAI
}

// NewAnthropic creates a Claude-backed completer.
func NewAnthropic(client anthropic.Client, opts ...Option) (*Anthropic, error) {
	s := defaultSettings("claude-sonnet-4-5")
	if err := apply(&s, opts); err != nil {
		return nil, err
	}
	return &Anthropic{client: client, settings: s, genai: metrics.NewGenAI()}, nil
}

// Model implements Completer.
func (a *Anthropic) Model() string { return a.model }

// Complete implements Completer.
func (a *Anthropic) Complete(ctx context.Context, req Request) (Response, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(a.temperature),
		Messages: []anthropic.MessageParam{{
			Role: anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(req.Prompt),
			},
		}},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	clog.FromContext(ctx).With("model", a.model).
		With("prompt_length", len(req.Prompt)).
		Info("Requesting Claude completion")

	message, err := retry.Do(ctx, a.retry, "complete", isRetryableAnthropicError, func() (*anthropic.Message, error) {
		return a.client.Messages.New(ctx, params)
	})
	if err != nil {
		a.genai.RecordCompletion(ctx, a.model, "error")
		return Response{}, fmt.Errorf("claude completion: %w", err)
	}

	var text string
	for _, content := range message.Content {
		if content.Type == "text" {
			text += content.Text
		}
	}
	if text == "" {
		a.genai.RecordCompletion(ctx, a.model, "error")
		return Response{}, errors.New("no text content in Claude response")
	}

	usage := Usage{
		PromptTokens:     message.Usage.InputTokens,
		CompletionTokens: message.Usage.OutputTokens,
	}
	a.genai.RecordTokens(ctx, a.model, usage.PromptTokens, usage.CompletionTokens)
	a.genai.RecordCompletion(ctx, a.model, "ok")

	return Response{Text: text, Usage: usage}, nil
}

// isRetryableAnthropicError returns true for rate limit, overloaded, and
// transient server errors.
func isRetryableAnthropicError(err error) bool {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 503, 504, 529:
			return true
		}
	}
	return false
}
