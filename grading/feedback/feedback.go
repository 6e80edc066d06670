/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package feedback

import (
	"context"
	"fmt"
	"time"

	"chainguard.dev/gradeflow/grading/comparator"
	"chainguard.dev/gradeflow/grading/rubric"
	"chainguard.dev/gradeflow/grading/validator"
	"chainguard.dev/gradeflow/llm"
	"chainguard.dev/gradeflow/prompt"
	"chainguard.dev/gradeflow/schema"
	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// Finding is one technical issue the model identified, tied to rubric
// evidence.
type Finding struct {
	Section  string `json:"section" jsonschema:"required"`
	Issue    string `json:"issue" jsonschema:"required"`
	Evidence string `json:"evidence,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// NarrativeSection is the model's assessment of one written answer.
type NarrativeSection struct {
	Topic       string   `json:"topic" jsonschema:"required"`
	Assessment  string   `json:"assessment" jsonschema:"required"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// technicalPayload is the technical call's response contract.
type technicalPayload struct {
	Summary  string    `json:"summary" jsonschema:"required"`
	Findings []Finding `json:"findings" jsonschema:"required"`
}

// narrativePayload is the narrative call's response contract.
type narrativePayload struct {
	Summary  string             `json:"summary" jsonschema:"required"`
	Sections []NarrativeSection `json:"sections" jsonschema:"required"`
}

// Feedback carries both parsed responses. The slices are always non-nil;
// each Available flag records whether its call produced usable content.
type Feedback struct {
	TechnicalAvailable bool      `json:"technical_available"`
	TechnicalSummary   string    `json:"technical_summary,omitempty"`
	TechnicalFindings  []Finding `json:"technical_findings"`

	NarrativeAvailable bool               `json:"narrative_available"`
	NarrativeSummary   string             `json:"narrative_summary,omitempty"`
	NarrativeSections  []NarrativeSection `json:"narrative_sections"`
}

// Unavailable returns Feedback with both fields marked unavailable.
func Unavailable() Feedback {
	return Feedback{
		TechnicalFindings: []Finding{},
		NarrativeSections: []NarrativeSection{},
	}
}

// Input is the evidence both prompts are grounded in.
type Input struct {
	StudentCode        string
	StudentNarrative   string
	ReferenceCode      string
	ReferenceNarrative string

	Rubric     *rubric.Rubric
	Validation validator.Result
	Comparison comparator.Comparison
}

// DefaultCallTimeout bounds each model call including its retry.
const DefaultCallTimeout = 2 * time.Minute

// Orchestrator dispatches the two feedback calls.
type Orchestrator struct {
	technical llm.Completer
	narrative llm.Completer
	timeout   time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCallTimeout overrides the per-call timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// New creates an Orchestrator. The two completers may be the same backend;
// they are called independently either way.
func New(technical, narrative llm.Completer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		technical: technical,
		narrative: narrative,
		timeout:   DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate runs both feedback calls concurrently and returns whatever each
// produced. It does not return an error: a failed call degrades to an
// unavailable field.
func (o *Orchestrator) Generate(ctx context.Context, in Input) Feedback {
	fb := Unavailable()

	techPrompt, narrPrompt, err := o.buildPrompts(in)
	if err != nil {
		clog.FromContext(ctx).With("error", err).Error("Failed to build feedback prompts")
		return fb
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		payload, err := call[technicalPayload](ctx, o.technical, techPrompt, o.timeout)
		if err != nil {
			clog.FromContext(ctx).With("error", err).Warn("Technical feedback unavailable")
			return nil
		}
		fb.TechnicalAvailable = true
		fb.TechnicalSummary = sanitizeFreeText(payload.Summary)
		for _, f := range payload.Findings {
			f.Issue = sanitizeFreeText(f.Issue)
			fb.TechnicalFindings = append(fb.TechnicalFindings, f)
		}
		return nil
	})
	g.Go(func() error {
		payload, err := call[narrativePayload](ctx, o.narrative, narrPrompt, o.timeout)
		if err != nil {
			clog.FromContext(ctx).With("error", err).Warn("Narrative feedback unavailable")
			return nil
		}
		fb.NarrativeAvailable = true
		fb.NarrativeSummary = sanitizeFreeText(payload.Summary)
		for _, s := range payload.Sections {
			s.Assessment = sanitizeFreeText(s.Assessment)
			fb.NarrativeSections = append(fb.NarrativeSections, s)
		}
		return nil
	})
	// Both goroutines degrade instead of erroring, so Wait cannot fail.
	_ = g.Wait()

	return fb
}

// call completes one prompt and parses the response. One fresh completion is
// retried if the first response does not parse; a second parse failure
// degrades.
func call[T any](ctx context.Context, completer llm.Completer, promptText string, timeout time.Duration) (T, error) {
	var payload T
	if completer == nil {
		return payload, fmt.Errorf("no completer configured")
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		resp, err := completer.Complete(callCtx, llm.Request{Prompt: promptText})
		cancel()
		if err != nil {
			return payload, err
		}

		payload, lastErr = parsePayload[T](resp.Text, promptText)
		if lastErr == nil {
			return payload, nil
		}
		clog.FromContext(ctx).With("model", completer.Model()).
			With("error", lastErr).
			Warn("Unparseable feedback response, requesting again")
	}
	return payload, lastErr
}

func (o *Orchestrator) buildPrompts(in Input) (technical, narrative string, err error) {
	techSchema, err := schema.JSONFor[technicalPayload]()
	if err != nil {
		return "", "", err
	}
	narrSchema, err := schema.JSONFor[narrativePayload]()
	if err != nil {
		return "", "", err
	}

	technical, err = render(technicalPrompt, []step{
		func(t *prompt.Template) (*prompt.Template, error) { return t.BindYAML("rubric", in.Rubric) },
		func(t *prompt.Template) (*prompt.Template, error) { return t.BindJSON("validation", in.Validation) },
		func(t *prompt.Template) (*prompt.Template, error) { return t.BindJSON("comparison", in.Comparison) },
		func(t *prompt.Template) (*prompt.Template, error) { return t.Bind("reference_code", in.ReferenceCode) },
		func(t *prompt.Template) (*prompt.Template, error) { return t.Bind("student_code", in.StudentCode) },
		func(t *prompt.Template) (*prompt.Template, error) { return t.Bind("response_schema", techSchema) },
	})
	if err != nil {
		return "", "", fmt.Errorf("building technical prompt: %w", err)
	}

	narrative, err = render(narrativePrompt, []step{
		func(t *prompt.Template) (*prompt.Template, error) { return t.BindYAML("rubric", in.Rubric) },
		func(t *prompt.Template) (*prompt.Template, error) { return t.BindJSON("validation", in.Validation) },
		func(t *prompt.Template) (*prompt.Template, error) { return t.Bind("reference_narrative", in.ReferenceNarrative) },
		func(t *prompt.Template) (*prompt.Template, error) { return t.Bind("student_narrative", in.StudentNarrative) },
		func(t *prompt.Template) (*prompt.Template, error) { return t.Bind("response_schema", narrSchema) },
	})
	if err != nil {
		return "", "", fmt.Errorf("building narrative prompt: %w", err)
	}

	return technical, narrative, nil
}

type step func(*prompt.Template) (*prompt.Template, error)

func render(t *prompt.Template, steps []step) (string, error) {
	var err error
	for _, s := range steps {
		if t, err = s(t); err != nil {
			return "", err
		}
	}
	return t.Render()
}
