/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package llm

import (
	"context"
	"fmt"

	"chainguard.dev/gradeflow/llm/retry"
)

// Request is one completion request.
type Request struct {
	// System carries the system instructions, empty for none.
	System string
	// Prompt is the user-turn prompt text.
	Prompt string
}

// Usage reports token consumption for one call.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Response is the model's text response.
type Response struct {
	Text  string
	Usage Usage
}

// Completer produces one completion per call.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)
	// Model identifies the configured model for logs and metrics.
	Model() string
}

// settings are the knobs shared by every backend.
type settings struct {
	model       string
	maxTokens   int64
	temperature float64
	retry       retry.Config
}

func defaultSettings(model string) settings {
	return settings{
		model:       model,
		maxTokens:   4096,
		temperature: 0.1,
		retry:       retry.DefaultConfig(),
	}
}

// Option configures a backend.
type Option func(*settings) error

// WithModel overrides the default model name.
func WithModel(model string) Option {
	return func(s *settings) error {
		if model == "" {
			return fmt.Errorf("model cannot be empty")
		}
		s.model = model
		return nil
	}
}

// WithMaxTokens sets the maximum response length.
func WithMaxTokens(tokens int64) Option {
	return func(s *settings) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		s.maxTokens = tokens
		return nil
	}
}

// WithTemperature sets the sampling temperature, 0.0 to 1.0.
func WithTemperature(temp float64) Option {
	return func(s *settings) error {
		if temp < 0.0 || temp > 1.0 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0, got %f", temp)
		}
		s.temperature = temp
		return nil
	}
}

// WithRetryConfig overrides the retry policy for transient API errors.
func WithRetryConfig(cfg retry.Config) Option {
	return func(s *settings) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		s.retry = cfg
		return nil
	}
}

func apply(s *settings, opts []Option) error {
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return nil
}
