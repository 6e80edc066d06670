/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package comparator

import (
	"fmt"
	"strings"

	"chainguard.dev/gradeflow/grading/notebook"
	"chainguard.dev/gradeflow/grading/rubric"
)

// Reason tags why a compared unit mismatched.
type Reason string

const (
	// RowCount means a structured result's row count diverged beyond
	// tolerance.
	RowCount Reason = "row-count"
	// NumericValue means extracted numeric sets diverged beyond the relative
	// tolerance.
	NumericValue Reason = "numeric-value"
	// MissingOutput means the student cell produced no output where the
	// reference has one.
	MissingOutput Reason = "missing-output"
	// ExecutionError means the student cell captured an error output. Always
	// a mismatch regardless of the reference.
	ExecutionError Reason = "execution-error"
	// TextDivergence means the normalized text similarity fell below the
	// acceptance threshold.
	TextDivergence Reason = "text-divergence"
)

// Discrepancy describes one mismatched unit.
type Discrepancy struct {
	// Cell is the student cell index the unit aligned to.
	Cell int `json:"cell"`

	Student   string `json:"student"`
	Reference string `json:"reference"`
	Reason    Reason `json:"reason"`
}

// Comparison is the aggregate outcome of comparing one submission against the
// reference solution.
type Comparison struct {
	// Available is false when comparison was skipped (no reference, empty
	// reference outputs, or over budget). An unavailable comparison carries
	// no rate and the merger reallocates its weight to zero.
	Available bool `json:"available"`

	// SkipReason explains an unavailable comparison.
	SkipReason string `json:"skip_reason,omitempty"`

	// MatchRate is matched units over compared units, in [0, 100].
	MatchRate float64 `json:"match_rate"`

	Units   int `json:"units"`
	Matches int `json:"matches"`

	Discrepancies []Discrepancy `json:"discrepancies,omitempty"`
}

// Unavailable returns a cleanly skipped comparison.
func Unavailable(reason string) Comparison {
	return Comparison{SkipReason: reason}
}

// DefaultMaxUnits caps how many output units are compared before the
// comparator declares itself over budget.
const DefaultMaxUnits = 200

// Comparator compares student outputs to reference outputs under a tolerance
// policy.
type Comparator struct {
	tol      rubric.Tolerance
	maxUnits int
}

// New returns a Comparator for the given tolerance policy.
func New(tol rubric.Tolerance) *Comparator {
	return &Comparator{tol: tol, maxUnits: DefaultMaxUnits}
}

// WithMaxUnits overrides the comparison budget.
func (c *Comparator) WithMaxUnits(n int) *Comparator {
	c.maxUnits = n
	return c
}

// Compare aligns student code cells to reference code cells positionally and
// compares their captured outputs. A nil reference yields an unavailable
// comparison, never an error.
func (c *Comparator) Compare(student, reference *notebook.Document) Comparison {
	if reference == nil {
		return Unavailable("no reference solution")
	}

	refCells := reference.CodeCells()
	stuCells := student.CodeCells()

	// Units are reference code cells that captured non-error output; a
	// reference with nothing to compare against is not a gradable signal.
	var units []int
	for i, rc := range refCells {
		if hasComparableOutput(rc) {
			units = append(units, i)
		}
	}
	if len(units) == 0 {
		return Unavailable("reference solution has no captured outputs")
	}
	if len(units) > c.maxUnits {
		return Unavailable(fmt.Sprintf("comparison budget exceeded: %d units > %d", len(units), c.maxUnits))
	}

	cmp := Comparison{Available: true, Units: len(units)}
	for _, i := range units {
		ref := refCells[i]
		refText := outputText(ref)

		if i >= len(stuCells) {
			cmp.Discrepancies = append(cmp.Discrepancies, Discrepancy{
				Cell:      -1,
				Reference: snippet(refText),
				Reason:    MissingOutput,
			})
			continue
		}

		stu := stuCells[i]
		if reason, ok := c.compareUnit(stu, refText); !ok {
			cmp.Discrepancies = append(cmp.Discrepancies, Discrepancy{
				Cell:      stu.Index,
				Student:   snippet(outputText(stu)),
				Reference: snippet(refText),
				Reason:    reason,
			})
			continue
		}
		cmp.Matches++
	}

	cmp.MatchRate = float64(cmp.Matches) / float64(cmp.Units) * 100
	return cmp
}

// compareUnit applies the layered comparison to one aligned cell pair.
func (c *Comparator) compareUnit(stu notebook.Cell, refText string) (Reason, bool) {
	for _, o := range stu.Outputs {
		if o.IsError() {
			return ExecutionError, false
		}
	}
	stuText := outputText(stu)
	if strings.TrimSpace(stuText) == "" {
		return MissingOutput, false
	}

	// Layer 1: structured row counts, when the reference exposes one.
	if refRows, ok := extractRowCount(refText); ok {
		stuRows, ok := extractRowCount(stuText)
		if !ok || !rowCountWithin(stuRows, refRows, c.tol) {
			return RowCount, false
		}
	}

	// Layer 2: order-independent numeric sets under relative tolerance.
	refNums := extractNumbers(refText)
	stuNums := extractNumbers(stuText)
	if len(refNums) > 0 && len(stuNums) == len(refNums) {
		if numbersMatch(stuNums, refNums, c.tol.NumericRelative) {
			return "", true
		}
		return NumericValue, false
	}

	// Layer 3: normalized text similarity, insensitive to ordering,
	// whitespace, and superficial phrasing.
	if textSimilarity(stuText, refText) >= c.tol.TextThreshold {
		return "", true
	}
	return TextDivergence, false
}

func hasComparableOutput(c notebook.Cell) bool {
	for _, o := range c.Outputs {
		if !o.IsError() && strings.TrimSpace(o.Text) != "" {
			return true
		}
	}
	return false
}

func outputText(c notebook.Cell) string {
	var parts []string
	for _, o := range c.Outputs {
		if o.Text != "" {
			parts = append(parts, o.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// snippet bounds discrepancy excerpts so prompts and stored results stay
// small.
func snippet(s string) string {
	const max = 400
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
