/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metrics

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the unified meter for all model backends. The model name is a
// dimension on the recorded metrics rather than part of the meter.
const MeterName = "chainguard.ai.gradeflow"

// GenAI records token usage and completion outcomes for model calls.
type GenAI struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
	completions      metric.Int64Counter
}

// NewGenAI creates the counters on the unified meter. A counter that cannot
// be created is replaced with a no-op and logged.
func NewGenAI() *GenAI {
	meter := otel.Meter(MeterName, metric.WithInstrumentationVersion("1.0.0"))

	promptTokens, err := meter.Int64Counter("genai.token.prompt",
		metric.WithDescription("The number of prompt tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create prompt tokens counter, metrics will be disabled", "error", err)
		promptTokens = noop.Int64Counter{}
	}

	completionTokens, err := meter.Int64Counter("genai.token.completion",
		metric.WithDescription("The number of completion tokens used"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create completion tokens counter, metrics will be disabled", "error", err)
		completionTokens = noop.Int64Counter{}
	}

	completions, err := meter.Int64Counter("genai.completions",
		metric.WithDescription("The number of completion calls, by outcome"),
		metric.WithUnit("{calls}"))
	if err != nil {
		slog.Warn("Failed to create completions counter, metrics will be disabled", "error", err)
		completions = noop.Int64Counter{}
	}

	return &GenAI{
		promptTokens:     promptTokens,
		completionTokens: completionTokens,
		completions:      completions,
	}
}

// RecordTokens records prompt and completion token usage for one model call.
func (m *GenAI) RecordTokens(ctx context.Context, model string, promptTokens, completionTokens int64) {
	attrs := metric.WithAttributes(attribute.String("model", model))
	m.promptTokens.Add(ctx, promptTokens, attrs)
	m.completionTokens.Add(ctx, completionTokens, attrs)
}

// RecordCompletion records one completion call with its outcome
// ("ok", "error", or "degraded").
func (m *GenAI) RecordCompletion(ctx context.Context, model, outcome string) {
	m.completions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("outcome", outcome),
	))
}
