/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package grader

import (
	"time"

	"chainguard.dev/gradeflow/grading/execgate"
	"chainguard.dev/gradeflow/grading/feedback"
	"chainguard.dev/gradeflow/grading/normalizer"
	"chainguard.dev/gradeflow/grading/scoring"
)

// Result is one grading outcome with full provenance: what was auto-fixed,
// whether execution was needed and what happened, and which caps fired.
// A Result is never mutated after assembly; regrading produces a new one.
type Result struct {
	Assignment  string  `json:"assignment"`
	TotalPoints float64 `json:"total_points"`

	// FinalScore is in rubric points, bounded [0, TotalPoints].
	FinalScore float64 `json:"final_score"`

	BaseScore           float64       `json:"base_score"`
	MatchRate           float64       `json:"match_rate"`
	ComparisonAvailable bool          `json:"comparison_available"`
	Caps                []scoring.Cap `json:"caps"`

	Feedback feedback.Feedback `json:"feedback"`

	// Fixes and PenaltyPoints are the normalizer's preprocessing report.
	Fixes             []normalizer.Fix `json:"fixes"`
	PenaltyPoints     float64          `json:"penalty_points"`
	NeedsManualReview bool             `json:"needs_manual_review"`

	Execution execgate.Report `json:"execution"`

	// Ungraded marks a submission whose document could not be parsed.
	// FinalScore is zero and UngradedReason explains why.
	Ungraded       bool   `json:"ungraded,omitempty"`
	UngradedReason string `json:"ungraded_reason,omitempty"`

	GradedAt time.Time `json:"graded_at"`
}

// assemble builds the Result and enforces its shape: every list field is
// non-nil so presentation layers can rely on the keys existing, and the
// score is clamped to the rubric's bounds.
func assemble(r Result) *Result {
	if r.Caps == nil {
		r.Caps = []scoring.Cap{}
	}
	if r.Fixes == nil {
		r.Fixes = []normalizer.Fix{}
	}
	if r.Feedback.TechnicalFindings == nil {
		r.Feedback.TechnicalFindings = []feedback.Finding{}
	}
	if r.Feedback.NarrativeSections == nil {
		r.Feedback.NarrativeSections = []feedback.NarrativeSection{}
	}
	if r.FinalScore < 0 {
		r.FinalScore = 0
	}
	if r.FinalScore > r.TotalPoints {
		r.FinalScore = r.TotalPoints
	}
	r.GradedAt = time.Now().UTC()
	return &r
}

// ungraded builds the zero result for a submission whose document could not
// be processed.
func ungraded(assignment string, total float64, reason string) *Result {
	return assemble(Result{
		Assignment:     assignment,
		TotalPoints:    total,
		Feedback:       feedback.Unavailable(),
		Ungraded:       true,
		UngradedReason: reason,
	})
}
