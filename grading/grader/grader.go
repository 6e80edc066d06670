/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package grader

import (
	"context"
	"fmt"

	"chainguard.dev/gradeflow/grading/comparator"
	"chainguard.dev/gradeflow/grading/execgate"
	"chainguard.dev/gradeflow/grading/feedback"
	"chainguard.dev/gradeflow/grading/normalizer"
	"chainguard.dev/gradeflow/grading/notebook"
	"chainguard.dev/gradeflow/grading/rubric"
	"chainguard.dev/gradeflow/grading/scoring"
	"chainguard.dev/gradeflow/grading/validator"
	"github.com/chainguard-dev/clog"
)

// Grader grades submissions against one rubric.
type Grader struct {
	rubric     *rubric.Rubric
	norm       *normalizer.Normalizer
	gate       *execgate.Gate
	scoringCfg scoring.Config
	orch       *feedback.Orchestrator
	maxUnits   int
}

// New validates the rubric and builds the pipeline. A rubric that fails its
// invariants is a configuration error: no submissions are graded.
func New(ru *rubric.Rubric, cfg Config) (*Grader, error) {
	if ru == nil {
		return nil, fmt.Errorf("rubric is required")
	}
	if err := ru.Validate(); err != nil {
		return nil, fmt.Errorf("validating rubric: %w", err)
	}

	var gateOpts []execgate.Option
	if cfg.ExecTimeout > 0 {
		gateOpts = append(gateOpts, execgate.WithTimeout(cfg.ExecTimeout))
	}

	var orch *feedback.Orchestrator
	if cfg.Technical != nil || cfg.Narrative != nil {
		var orchOpts []feedback.Option
		if cfg.FeedbackTimeout > 0 {
			orchOpts = append(orchOpts, feedback.WithCallTimeout(cfg.FeedbackTimeout))
		}
		orch = feedback.New(cfg.Technical, cfg.Narrative, orchOpts...)
	}

	return &Grader{
		rubric:     ru,
		norm:       normalizer.New(cfg.rules()...),
		gate:       execgate.New(cfg.Sandbox, gateOpts...),
		scoringCfg: cfg.scoring(),
		orch:       orch,
		maxUnits:   cfg.MaxCompareUnits,
	}, nil
}

// Grade grades one submission. reference and dataDir are optional: a nil
// reference skips output comparison, an empty dataDir seeds no files for
// execution. A malformed submission returns an ungraded zero result, not an
// error.
func (g *Grader) Grade(ctx context.Context, submission, reference []byte, dataDir string) (*Result, error) {
	log := clog.FromContext(ctx).With("assignment", g.rubric.Assignment)

	doc, err := notebook.Parse(submission)
	if err != nil {
		log.With("error", err).Warn("Unparseable submission, recording ungraded result")
		return ungraded(g.rubric.Assignment, g.rubric.TotalPoints, fmt.Sprintf("unparseable notebook: %v", err)), nil
	}

	// Normalize each code cell; the submitted document stays untouched.
	normalized, fixes, penalty, review := g.normalize(doc)

	// Execute if the submission arrived without enough outputs.
	graded, execReport := g.gate.Prepare(ctx, normalized, dataDir)

	extraction := notebook.Extract(graded)
	execErrors := countExecutionErrors(graded)

	vr := validator.Validate(extraction.CodeText, graded.CodeCells(), g.rubric)
	cmp := g.compare(ctx, graded, reference)

	merged := scoring.Merge(scoring.Input{
		Validation:      vr,
		Comparison:      cmp,
		PenaltyPoints:   penalty,
		ExecutionErrors: execErrors,
	}, g.rubric, g.scoringCfg)

	fb := feedback.Unavailable()
	if g.orch != nil {
		refExtraction := extractReference(reference)
		fb = g.orch.Generate(ctx, feedback.Input{
			StudentCode:        extraction.CodeText,
			StudentNarrative:   extraction.NarrativeText,
			ReferenceCode:      refExtraction.CodeText,
			ReferenceNarrative: refExtraction.NarrativeText,
			Rubric:             g.rubric,
			Validation:         *vr,
			Comparison:         cmp,
		})
	}

	log.With("final_score", merged.FinalScore).
		With("base_score", merged.BaseScore).
		With("caps", len(merged.Caps)).
		With("fixes", len(fixes)).
		Info("Graded submission")

	return assemble(Result{
		Assignment:          g.rubric.Assignment,
		TotalPoints:         g.rubric.TotalPoints,
		FinalScore:          merged.FinalScore,
		BaseScore:           merged.BaseScore,
		MatchRate:           merged.MatchRate,
		ComparisonAvailable: merged.ComparisonAvailable,
		Caps:                merged.Caps,
		Feedback:            fb,
		Fixes:               fixes,
		PenaltyPoints:       penalty,
		NeedsManualReview:   review,
		Execution:           execReport,
	}), nil
}

// normalize runs the rules over every code cell and derives a document with
// the fixed sources.
func (g *Grader) normalize(doc *notebook.Document) (*notebook.Document, []normalizer.Fix, float64, bool) {
	sources := map[int]string{}
	fixes := []normalizer.Fix{}
	var penalty float64

	for _, c := range doc.CodeCells() {
		report := g.norm.Normalize(c.Source)
		if len(report.Fixes) == 0 {
			continue
		}
		sources[c.Index] = report.Code
		fixes = append(fixes, report.Fixes...)
		penalty += report.TotalPenalty()
	}

	normalized := doc
	if len(sources) > 0 {
		normalized = doc.Derive(sources)
	}
	return normalized, fixes, penalty, len(fixes) > normalizer.ManualReviewThreshold
}

// compare runs the output comparator, degrading to an unavailable comparison
// when there is no usable reference.
func (g *Grader) compare(ctx context.Context, graded *notebook.Document, reference []byte) comparator.Comparison {
	if reference == nil {
		return comparator.Unavailable("no reference solution")
	}
	refDoc, err := notebook.Parse(reference)
	if err != nil {
		clog.FromContext(ctx).With("error", err).Warn("Unparseable reference solution, skipping comparison")
		return comparator.Unavailable("reference solution unparseable")
	}

	c := comparator.New(g.rubric.Tolerance)
	if g.maxUnits > 0 {
		c = c.WithMaxUnits(g.maxUnits)
	}
	return c.Compare(graded, refDoc)
}

func countExecutionErrors(doc *notebook.Document) int {
	var n int
	for _, c := range doc.CodeCells() {
		for _, out := range c.Outputs {
			if out.IsError() {
				n++
			}
		}
	}
	return n
}

// extractReference is tolerant: feedback prompts simply omit reference
// context when none parses.
func extractReference(reference []byte) notebook.Extraction {
	if reference == nil {
		return notebook.Extraction{}
	}
	doc, err := notebook.Parse(reference)
	if err != nil {
		return notebook.Extraction{}
	}
	return notebook.Extract(doc)
}
