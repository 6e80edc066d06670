/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package scoring

import (
	"fmt"

	"chainguard.dev/gradeflow/grading/comparator"
	"chainguard.dev/gradeflow/grading/rubric"
	"chainguard.dev/gradeflow/grading/validator"
)

// Config holds the merge weights and cap ceilings. Zero value is unusable;
// start from DefaultConfig.
type Config struct {
	// ValidatorWeight and ComparatorWeight blend the base score and output
	// match rate. When the comparison is unavailable the comparator weight
	// is reallocated to zero and the base score stands alone.
	ValidatorWeight  float64
	ComparatorWeight float64

	// ExecutionErrorCap is the percent ceiling applied when any execution
	// error appears in the captured outputs.
	ExecutionErrorCap float64

	// MissingVariableAllowance is how many globally required variables may
	// be missing before MissingVariableCap applies.
	MissingVariableAllowance int
	MissingVariableCap       float64

	// MatchRateBands maps match-rate thresholds to progressively lower
	// ceilings: a rate below Below caps the score at Cap.
	MatchRateBands []MatchRateBand
}

// MatchRateBand is one progressive match-rate ceiling.
type MatchRateBand struct {
	Below float64
	Cap   float64
}

// DefaultConfig returns the documented weighting and cap policy.
func DefaultConfig() Config {
	return Config{
		ValidatorWeight:          0.5,
		ComparatorWeight:         0.5,
		ExecutionErrorCap:        80,
		MissingVariableAllowance: 2,
		MissingVariableCap:       75,
		MatchRateBands: []MatchRateBand{
			{Below: 40, Cap: 50},
			{Below: 60, Cap: 70},
			{Below: 75, Cap: 80},
		},
	}
}

// Cap records one triggered ceiling with its human-readable reason.
type Cap struct {
	Limit  float64 `json:"limit"` // percent ceiling
	Reason string  `json:"reason"`
}

// Input carries the deterministic signals into the merge.
type Input struct {
	Validation *validator.Result
	Comparison comparator.Comparison

	// PenaltyPoints is the normalizer's total penalty, in rubric points.
	PenaltyPoints float64

	// ExecutionErrors is the number of error outputs captured in the
	// document being graded.
	ExecutionErrors int
}

// Merged is the blended, capped, penalized, clamped score.
type Merged struct {
	// FinalScore is in rubric points, clamped to [0, TotalPoints].
	FinalScore float64 `json:"final_score"`

	// BaseScore and MatchRate restate the inputs for provenance.
	BaseScore float64 `json:"base_score"`
	MatchRate float64 `json:"match_rate"`

	// ComparisonAvailable records whether MatchRate contributed.
	ComparisonAvailable bool `json:"comparison_available"`

	// Caps lists every triggered ceiling; the minimum won.
	Caps []Cap `json:"caps,omitempty"`

	// PenaltyPoints is the normalizer penalty subtracted after caps.
	PenaltyPoints float64 `json:"penalty_points"`
}

// Merge blends the validator and comparator signals under cfg and rescales to
// the rubric's total points. Order: blend, caps (minimum wins), penalty
// subtraction, clamp. The model-generated feedback has no input here.
func Merge(in Input, ru *rubric.Rubric, cfg Config) Merged {
	m := Merged{
		BaseScore:           in.Validation.BaseScore,
		ComparisonAvailable: in.Comparison.Available,
		PenaltyPoints:       in.PenaltyPoints,
	}

	// Blend. An unavailable comparison reallocates the output weight to
	// zero rather than penalizing the student.
	pct := in.Validation.BaseScore
	if in.Comparison.Available {
		m.MatchRate = in.Comparison.MatchRate
		pct = cfg.ValidatorWeight*in.Validation.BaseScore + cfg.ComparatorWeight*in.Comparison.MatchRate
	}

	// Caps: each condition is evaluated independently; the most restrictive
	// ceiling wins.
	if in.ExecutionErrors > 0 {
		m.Caps = append(m.Caps, Cap{
			Limit:  cfg.ExecutionErrorCap,
			Reason: fmt.Sprintf("%d execution error(s) in captured outputs", in.ExecutionErrors),
		})
	}
	if missing := countMissing(in.Validation); missing > cfg.MissingVariableAllowance {
		m.Caps = append(m.Caps, Cap{
			Limit:  cfg.MissingVariableCap,
			Reason: fmt.Sprintf("%d required variable(s) missing", missing),
		})
	}
	if in.Comparison.Available {
		// Bands are ordered most restrictive first; the first match is the
		// tightest ceiling for this rate.
		for _, band := range cfg.MatchRateBands {
			if in.Comparison.MatchRate < band.Below {
				m.Caps = append(m.Caps, Cap{
					Limit:  band.Cap,
					Reason: fmt.Sprintf("output match rate %.0f%% below %.0f%%", in.Comparison.MatchRate, band.Below),
				})
				break
			}
		}
	}
	for _, c := range m.Caps {
		if c.Limit < pct {
			pct = c.Limit
		}
	}

	// Penalty after caps, clamp last.
	points := pct/100*ru.TotalPoints - in.PenaltyPoints
	if points < 0 {
		points = 0
	}
	if points > ru.TotalPoints {
		points = ru.TotalPoints
	}
	m.FinalScore = points
	return m
}

func countMissing(vr *validator.Result) int {
	var n int
	for _, found := range vr.Variables {
		if !found {
			n++
		}
	}
	return n
}
