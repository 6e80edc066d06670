/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package llm

import (
	"fmt"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr bool
	}{
		{name: "valid model", opt: WithModel("gpt-4o-mini")},
		{name: "empty model", opt: WithModel(""), wantErr: true},
		{name: "valid max tokens", opt: WithMaxTokens(2048)},
		{name: "zero max tokens", opt: WithMaxTokens(0), wantErr: true},
		{name: "valid temperature", opt: WithTemperature(0.7)},
		{name: "temperature too high", opt: WithTemperature(1.5), wantErr: true},
		{name: "negative temperature", opt: WithTemperature(-0.1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaultSettings("m")
			err := tt.opt(&s)
			if (err != nil) != tt.wantErr {
				t.Errorf("option error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsApply(t *testing.T) {
	s := defaultSettings("default-model")
	err := apply(&s, []Option{
		WithModel("custom-model"),
		WithMaxTokens(1024),
		WithTemperature(0.5),
	})
	if err != nil {
		t.Fatalf("apply() error = %v", err)
	}
	if s.model != "custom-model" || s.maxTokens != 1024 || s.temperature != 0.5 {
		t.Errorf("settings = %+v, options not applied", s)
	}
}

func TestIsRetryableAnthropicError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "non-API error", err: fmt.Errorf("connection refused"), want: false},
		{name: "429 rate limit", err: &anthropic.Error{StatusCode: 429}, want: true},
		{name: "529 overloaded", err: &anthropic.Error{StatusCode: 529}, want: true},
		{name: "400 bad request", err: &anthropic.Error{StatusCode: 400}, want: false},
		{name: "401 unauthorized", err: &anthropic.Error{StatusCode: 401}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isRetryableAnthropicError(tt.err); got != tt.want {
				t.Errorf("isRetryableAnthropicError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRetryableOpenAIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "non-API error", err: fmt.Errorf("connection refused"), want: false},
		{name: "429 rate limit", err: &openai.Error{StatusCode: 429}, want: true},
		{name: "503 unavailable", err: &openai.Error{StatusCode: 503}, want: true},
		{name: "404 not found", err: &openai.Error{StatusCode: 404}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isRetryableOpenAIError(tt.err); got != tt.want {
				t.Errorf("isRetryableOpenAIError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRetryableGeminiError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "resource exhausted", err: fmt.Errorf("RESOURCE_EXHAUSTED: quota"), want: true},
		{name: "rate limit text", err: fmt.Errorf("rate limit exceeded"), want: true},
		{name: "503", err: fmt.Errorf("googleapi: Error 503"), want: true},
		{name: "invalid argument", err: fmt.Errorf("INVALID_ARGUMENT: bad schema"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isRetryableGeminiError(tt.err); got != tt.want {
				t.Errorf("isRetryableGeminiError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
