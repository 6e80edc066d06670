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
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
)

// OpenAI is a Completer backed by the Chat Completions API.
type OpenAI struct {
	client openai.Client
	settings
	genai *metrics.GenAI
}

// NewOpenAI creates a GPT-backed completer.
func NewOpenAI(client openai.Client, opts ...Option) (*OpenAI, error) {
	s := defaultSettings("gpt-4o")
	if err := apply(&s, opts); err != nil {
		return nil, err
	}
	return &OpenAI{client: client, settings: s, genai: metrics.NewGenAI()}, nil
}

// Model implements Completer.
func (o *OpenAI) Model() string { return o.model }

// Complete implements Completer.
func (o *OpenAI) Complete(ctx context.Context, req Request) (Response, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(o.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(o.maxTokens),
		Temperature:         openai.Float(o.temperature),
	}

	clog.FromContext(ctx).With("model", o.model).
		With("prompt_length", len(req.Prompt)).
		Info("Requesting OpenAI completion")

	completion, err := retry.Do(ctx, o.retry, "complete", isRetryableOpenAIError, func() (*openai.ChatCompletion, error) {
		return o.client.Chat.Completions.New(ctx, params)
	})
	if err != nil {
		o.genai.RecordCompletion(ctx, o.model, "error")
		return Response{}, fmt.Errorf("openai completion: %w", err)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		o.genai.RecordCompletion(ctx, o.model, "error")
		return Response{}, errors.New("no text content in OpenAI response")
	}

	usage := Usage{
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
	}
	o.genai.RecordTokens(ctx, o.model, usage.PromptTokens, usage.CompletionTokens)
	o.genai.RecordCompletion(ctx, o.model, "ok")

	return Response{Text: completion.Choices[0].Message.Content, Usage: usage}, nil
}

// isRetryableOpenAIError returns true for rate limit and transient server
// errors.
func isRetryableOpenAIError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503:
			return true
		}
	}
	return false
}
