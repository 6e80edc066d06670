/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package grader

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"chainguard.dev/gradeflow/grading/rubric"
	"chainguard.dev/gradeflow/llm"
)

const rubricYAML = `
assignment: hw03-sales
total_points: 37.5
reflection_points: 7.5
sections:
  - name: Import and clean
    points: 15
    variables: [sales]
    functions: [read_csv]
  - name: Analysis
    points: 15
    variables: [model_fit]
    functions: [filter]
required_variables: [sales, model_fit]
`

func loadRubric(t *testing.T) *rubric.Rubric {
	t.Helper()
	ru, err := rubric.Load([]byte(rubricYAML))
	if err != nil {
		t.Fatalf("rubric.Load() error = %v", err)
	}
	return ru
}

type cellSpec struct {
	source string
	output string
	errOut bool
}

func buildNotebook(t *testing.T, cells []cellSpec) []byte {
	t.Helper()
	raw := make([]map[string]any, 0, len(cells))
	for _, c := range cells {
		cell := map[string]any{
			"cell_type": "code",
			"metadata":  map[string]any{},
			"source":    c.source,
			"outputs":   []any{},
		}
		switch {
		case c.errOut:
			cell["outputs"] = []any{map[string]any{
				"output_type": "error",
				"ename":       "Error",
				"evalue":      "object not found",
			}}
		case c.output != "":
			cell["outputs"] = []any{map[string]any{
				"output_type": "stream",
				"name":        "stdout",
				"text":        c.output,
			}}
		}
		raw = append(raw, cell)
	}
	raw = append(raw, map[string]any{
		"cell_type": "markdown",
		"metadata":  map[string]any{},
		"source":    "The data may be biased toward large stores.",
	})

	data, err := json.Marshal(map[string]any{
		"cells":          raw,
		"metadata":       map[string]any{},
		"nbformat":       4,
		"nbformat_minor": 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func perfectCells() []cellSpec {
	return []cellSpec{
		{source: "library(tidyverse)\nsales <- read_csv(\"sales.csv\")", output: "Rows: 100 Columns: 4\n"},
		{source: "model_fit <- sales %>% filter(amount > 0)", output: "# A tibble: 97 x 4\n"},
	}
}

func mustGrader(t *testing.T, cfg Config) *Grader {
	t.Helper()
	g, err := New(loadRubric(t), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func TestGradePerfectSubmission(t *testing.T) {
	g := mustGrader(t, Config{})
	submission := buildNotebook(t, perfectCells())
	reference := buildNotebook(t, perfectCells())

	res, err := g.Grade(context.Background(), submission, reference, "")
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}

	if math.Abs(res.FinalScore-37.5) > 1e-9 {
		t.Errorf("FinalScore = %v, wanted = 37.5", res.FinalScore)
	}
	if len(res.Caps) != 0 {
		t.Errorf("Caps = %+v, wanted none", res.Caps)
	}
	if len(res.Fixes) != 0 {
		t.Errorf("Fixes = %+v, wanted none", res.Fixes)
	}
	if !res.ComparisonAvailable || res.MatchRate != 100 {
		t.Errorf("comparison = %v/%v, wanted available at 100%%", res.ComparisonAvailable, res.MatchRate)
	}
}

func TestGradeSyntaxDamagedSubmission(t *testing.T) {
	g := mustGrader(t, Config{})

	// Three repairable defects, 0.5 points each: a commented-out library
	// load, a malformed pipe, and a dataframe self-reference.
	damaged := []cellSpec{
		{source: "# library(tidyverse)\nsales <- read_csv(\"sales.csv\")", output: "Rows: 100 Columns: 4\n"},
		{source: "model_fit <- sales % >% filter(sales$amount > 0)", output: "# A tibble: 97 x 4\n"},
	}
	submission := buildNotebook(t, damaged)
	reference := buildNotebook(t, perfectCells())

	res, err := g.Grade(context.Background(), submission, reference, "")
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}

	if len(res.Fixes) != 3 {
		t.Fatalf("Fixes = %+v, wanted 3", res.Fixes)
	}
	if res.PenaltyPoints != 1.5 {
		t.Errorf("PenaltyPoints = %v, wanted = 1.5", res.PenaltyPoints)
	}
	if math.Abs(res.FinalScore-36.0) > 1e-9 {
		t.Errorf("FinalScore = %v, wanted = 36.0", res.FinalScore)
	}
	if len(res.Caps) != 0 {
		t.Errorf("Caps = %+v, wanted none", res.Caps)
	}
}

func TestGradeWithoutReference(t *testing.T) {
	g := mustGrader(t, Config{})
	submission := buildNotebook(t, perfectCells())

	res, err := g.Grade(context.Background(), submission, nil, "")
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}

	if res.ComparisonAvailable {
		t.Error("ComparisonAvailable = true, wanted false without reference")
	}
	// Base score stands alone; the output weight contributes zero, not a
	// penalty.
	want := res.BaseScore / 100 * res.TotalPoints
	if math.Abs(res.FinalScore-want) > 1e-9 {
		t.Errorf("FinalScore = %v, wanted base-only %v", res.FinalScore, want)
	}
}

func TestGradeExecutionErrorsCapScore(t *testing.T) {
	g := mustGrader(t, Config{})
	withError := perfectCells()
	withError[1] = cellSpec{source: withError[1].source, errOut: true}
	submission := buildNotebook(t, withError)
	reference := buildNotebook(t, perfectCells())

	res, err := g.Grade(context.Background(), submission, reference, "")
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}

	if len(res.Caps) == 0 {
		t.Fatal("Caps empty, wanted execution-error cap")
	}
	if res.FinalScore >= res.TotalPoints {
		t.Errorf("FinalScore = %v, wanted capped below total", res.FinalScore)
	}
}

func TestGradeUnparseableSubmission(t *testing.T) {
	g := mustGrader(t, Config{})

	res, err := g.Grade(context.Background(), []byte("not a notebook"), nil, "")
	if err != nil {
		t.Fatalf("Grade() error = %v, wanted ungraded result instead", err)
	}

	if !res.Ungraded || res.UngradedReason == "" {
		t.Errorf("result = %+v, wanted ungraded with reason", res)
	}
	if res.FinalScore != 0 {
		t.Errorf("FinalScore = %v, wanted 0 for ungraded submission", res.FinalScore)
	}
	if res.Feedback.TechnicalFindings == nil || res.Caps == nil {
		t.Error("list fields nil, shape contract violated")
	}
}

func TestNewRejectsInvalidRubric(t *testing.T) {
	bad := &rubric.Rubric{
		Assignment:  "hw03",
		TotalPoints: 50,
		Sections:    []rubric.Section{{Name: "only", Points: 10}},
	}
	if _, err := New(bad, Config{}); err == nil {
		t.Error("New() error = nil, wanted point-sum invariant failure")
	}
}

// scriptedCompleter fails a fixed number of times before succeeding.
type scriptedCompleter struct {
	failures int
	response string
	calls    int
}

func (s *scriptedCompleter) Complete(context.Context, llm.Request) (llm.Response, error) {
	s.calls++
	if s.calls <= s.failures {
		return llm.Response{}, errors.New("model timed out")
	}
	return llm.Response{Text: s.response}, nil
}

func (s *scriptedCompleter) Model() string { return "scripted" }

func TestGradeFeedbackUnavailableDoesNotAffectScore(t *testing.T) {
	tech := &scriptedCompleter{response: `{"summary": "fine", "findings": []}`}
	narr := &scriptedCompleter{failures: 99}

	withFeedback := mustGrader(t, Config{Technical: tech, Narrative: narr})
	without := mustGrader(t, Config{})

	submission := buildNotebook(t, perfectCells())
	reference := buildNotebook(t, perfectCells())

	got, err := withFeedback.Grade(context.Background(), submission, reference, "")
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}
	base, err := without.Grade(context.Background(), submission, reference, "")
	if err != nil {
		t.Fatalf("Grade() error = %v", err)
	}

	if got.Feedback.NarrativeAvailable {
		t.Error("NarrativeAvailable = true, wanted unavailable after repeated failures")
	}
	if !got.Feedback.TechnicalAvailable {
		t.Error("TechnicalAvailable = false, one failing field blanked the other")
	}
	if got.FinalScore != base.FinalScore {
		t.Errorf("FinalScore = %v with feedback, %v without; model failure changed the score", got.FinalScore, base.FinalScore)
	}
	if got.Feedback.NarrativeSections == nil {
		t.Error("NarrativeSections = nil, wanted empty non-nil slice")
	}
}

func TestGradeDeterministicScore(t *testing.T) {
	g := mustGrader(t, Config{})
	submission := buildNotebook(t, perfectCells())
	reference := buildNotebook(t, perfectCells())

	first, err := g.Grade(context.Background(), submission, reference, "")
	if err != nil {
		t.Fatal(err)
	}
	for range 5 {
		res, err := g.Grade(context.Background(), submission, reference, "")
		if err != nil {
			t.Fatal(err)
		}
		if res.FinalScore != first.FinalScore || res.BaseScore != first.BaseScore {
			t.Fatalf("score drifted: %v/%v vs %v/%v", res.FinalScore, res.BaseScore, first.FinalScore, first.BaseScore)
		}
	}
}
