/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric_test

import (
	"errors"
	"testing"

	"chainguard.dev/gradeflow/grading/rubric"
	"github.com/google/go-cmp/cmp"
)

const validRubric = `
assignment: hw03-sales
total_points: 37.5
reflection_points: 5
sections:
  - name: Import and clean
    points: 12.5
    variables: [sales, sales_clean]
    functions: [read_csv, filter]
  - name: Summaries
    points: 20
    variables: [by_region]
    functions: [group_by, summarize]
required_variables: [sales, by_region]
`

func TestLoad(t *testing.T) {
	r, err := rubric.Load([]byte(validRubric))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if r.Assignment != "hw03-sales" {
		t.Errorf("assignment: got = %q, wanted = %q", r.Assignment, "hw03-sales")
	}
	if r.TotalPoints != 37.5 {
		t.Errorf("total points: got = %v, wanted = 37.5", r.TotalPoints)
	}
	if len(r.Sections) != 2 {
		t.Fatalf("section count: got = %d, wanted = 2", len(r.Sections))
	}
	if diff := cmp.Diff([]string{"sales", "sales_clean"}, r.Sections[0].Variables); diff != "" {
		t.Errorf("section 0 variables (-want +got):\n%s", diff)
	}

	// Zero-valued tolerance fields pick up the standard policy.
	if r.Tolerance.NumericRelative != 0.01 {
		t.Errorf("numeric tolerance: got = %v, wanted = 0.01", r.Tolerance.NumericRelative)
	}
	if r.Tolerance.TextThreshold != 0.6 {
		t.Errorf("text threshold: got = %v, wanted = 0.6", r.Tolerance.TextThreshold)
	}
}

func TestLoadInvariants(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{{
		name: "points do not sum to total",
		yaml: `
assignment: hw01
total_points: 100
sections:
  - name: A
    points: 40
  - name: B
    points: 40
`,
	}, {
		name: "duplicate variable across sections",
		yaml: `
assignment: hw01
total_points: 20
sections:
  - name: A
    points: 10
    variables: [sales]
  - name: B
    points: 10
    variables: [sales]
`,
	}, {
		name: "missing assignment id",
		yaml: `
total_points: 10
sections:
  - name: A
    points: 10
`,
	}, {
		name: "non-positive total",
		yaml: `
assignment: hw01
total_points: 0
`,
	}, {
		name: "unnamed section",
		yaml: `
assignment: hw01
total_points: 10
sections:
  - points: 10
`,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rubric.Load([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Load() error = nil, wanted invariant violation")
			}
			if !errors.Is(err, rubric.ErrInvariant) {
				t.Errorf("Load() error = %v, wanted ErrInvariant", err)
			}
		})
	}
}

func TestLoadReflectionPointsCountTowardTotal(t *testing.T) {
	// Sections alone do not reach the total; reflection points close the gap.
	_, err := rubric.Load([]byte(`
assignment: hw02
total_points: 25
reflection_points: 5
sections:
  - name: A
    points: 20
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestSectionFor(t *testing.T) {
	r, err := rubric.Load([]byte(validRubric))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s, ok := r.SectionFor("by_region")
	if !ok {
		t.Fatal("SectionFor(by_region): got = not found, wanted = found")
	}
	if s.Name != "Summaries" {
		t.Errorf("section name: got = %q, wanted = %q", s.Name, "Summaries")
	}

	if _, ok := r.SectionFor("nope"); ok {
		t.Error("SectionFor(nope): got = found, wanted = not found")
	}
}

func TestDuplicateVariableWithinSectionAllowed(t *testing.T) {
	// Repetition inside one section is harmless and must not trip the
	// cross-section invariant.
	_, err := rubric.Load([]byte(`
assignment: hw04
total_points: 10
sections:
  - name: A
    points: 10
    variables: [sales, sales]
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}
