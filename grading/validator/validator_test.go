/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package validator_test

import (
	"testing"

	"chainguard.dev/gradeflow/grading/notebook"
	"chainguard.dev/gradeflow/grading/rubric"
	"chainguard.dev/gradeflow/grading/validator"
	"github.com/google/go-cmp/cmp"
)

func mustRubric(t *testing.T, yaml string) *rubric.Rubric {
	t.Helper()
	r, err := rubric.Load([]byte(yaml))
	if err != nil {
		t.Fatalf("rubric.Load() error = %v", err)
	}
	return r
}

const testRubric = `
assignment: hw03
total_points: 100
sections:
  - name: Import
    points: 40
    variables: [sales]
    functions: [read_csv]
  - name: Summaries
    points: 60
    variables: [by_region]
    functions: [group_by, summarize]
required_variables: [sales, by_region]
`

const completeCode = `
library(tidyverse)
sales <- read_csv("sales.csv")
by_region <- sales %>%
  group_by(region) %>%
  summarize(total = sum(amount))
`

func codeCells(withOutput, without int) []notebook.Cell {
	var cells []notebook.Cell
	for i := 0; i < withOutput; i++ {
		cells = append(cells, notebook.Cell{
			Kind:    notebook.Code,
			Outputs: []notebook.Output{{Kind: notebook.Stream, Text: "ok"}},
		})
	}
	for i := 0; i < without; i++ {
		cells = append(cells, notebook.Cell{Kind: notebook.Code})
	}
	return cells
}

func TestValidateComplete(t *testing.T) {
	ru := mustRubric(t, testRubric)
	res := validator.Validate(completeCode, codeCells(3, 0), ru)

	if res.BaseScore != 100 {
		t.Errorf("base score: got = %v, wanted = 100", res.BaseScore)
	}
	for _, s := range res.Sections {
		if s.Status != validator.Complete {
			t.Errorf("section %q: got = %q, wanted = %q", s.Name, s.Status, validator.Complete)
		}
	}
	if missing := res.MissingRequired(ru); len(missing) != 0 {
		t.Errorf("missing required: got = %v, wanted = none", missing)
	}
	if res.ExecutionRate != 1 {
		t.Errorf("execution rate: got = %v, wanted = 1", res.ExecutionRate)
	}
}

func TestValidatePartialSection(t *testing.T) {
	ru := mustRubric(t, testRubric)

	// by_region is assigned, but neither group_by nor summarize is called.
	code := `
sales <- read_csv("sales.csv")
by_region <- aggregate(amount ~ region, data = sales, FUN = sum)
`
	res := validator.Validate(code, codeCells(2, 0), ru)

	var summaries validator.SectionResult
	for _, s := range res.Sections {
		if s.Name == "Summaries" {
			summaries = s
		}
	}
	if summaries.Status != validator.Partial {
		t.Errorf("Summaries status: got = %q, wanted = %q", summaries.Status, validator.Partial)
	}
	if diff := cmp.Diff([]string{"group_by", "summarize"}, summaries.MissingFunctions); diff != "" {
		t.Errorf("missing functions (-want +got):\n%s", diff)
	}

	// Import complete (40) + Summaries half credit (30) = 70/100 section
	// score, all required variables present.
	want := 0.7*70 + 0.3*100
	if res.BaseScore != want {
		t.Errorf("base score: got = %v, wanted = %v", res.BaseScore, want)
	}
}

func TestValidateMissingSection(t *testing.T) {
	ru := mustRubric(t, testRubric)
	code := `sales <- read_csv("sales.csv")`
	res := validator.Validate(code, codeCells(1, 1), ru)

	var summaries validator.SectionResult
	for _, s := range res.Sections {
		if s.Name == "Summaries" {
			summaries = s
		}
	}
	if summaries.Status != validator.Missing {
		t.Errorf("Summaries status: got = %q, wanted = %q", summaries.Status, validator.Missing)
	}
	if res.Variables["by_region"] {
		t.Error("by_region: got = found, wanted = missing")
	}
	if diff := cmp.Diff([]string{"by_region"}, res.MissingRequired(ru)); diff != "" {
		t.Errorf("missing required (-want +got):\n%s", diff)
	}
	if res.ExecutionRate != 0.5 {
		t.Errorf("execution rate: got = %v, wanted = 0.5", res.ExecutionRate)
	}
}

func TestValidateWordBoundaries(t *testing.T) {
	ru := mustRubric(t, `
assignment: hw05
total_points: 10
sections:
  - name: A
    points: 10
    variables: [sales]
    functions: [filter]
required_variables: [sales]
`)

	tests := []struct {
		name      string
		code      string
		wantFound bool
	}{{
		name:      "exact assignment",
		code:      "sales <- read_csv(\"s.csv\")\nfilter(sales, amount > 0)",
		wantFound: true,
	}, {
		name:      "equals assignment",
		code:      "sales = read_csv(\"s.csv\")\nfilter(sales, amount > 0)",
		wantFound: true,
	}, {
		name:      "superstring variable does not count",
		code:      "sales_clean <- read_csv(\"s.csv\")\nprefilter(sales_clean)",
		wantFound: false,
	}, {
		name:      "dotted superstring does not count",
		code:      "my.sales <- read_csv(\"s.csv\")\nsales.filter(x)",
		wantFound: false,
	}, {
		name:      "comparison is not assignment",
		code:      "if (sales == 3) filter(df)",
		wantFound: false,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validator.Validate(tt.code, nil, ru)
			if got := res.Variables["sales"]; got != tt.wantFound {
				t.Errorf("sales found: got = %v, wanted = %v", got, tt.wantFound)
			}
		})
	}
}

func TestValidateNoSectionsFallsBackToPresence(t *testing.T) {
	// A rubric without sections must never collapse toward zero; the base
	// score is the variable presence score alone.
	ru := mustRubric(t, `
assignment: hw06
total_points: 20
reflection_points: 20
required_variables: [sales, model_fit]
`)

	res := validator.Validate("sales <- read_csv(\"s.csv\")", nil, ru)
	if res.BaseScore != 50 {
		t.Errorf("base score: got = %v, wanted = 50", res.BaseScore)
	}

	res = validator.Validate("sales <- 1\nmodel_fit <- lm(y ~ x)", nil, ru)
	if res.BaseScore != 100 {
		t.Errorf("base score: got = %v, wanted = 100", res.BaseScore)
	}
}

func TestValidateDeterminism(t *testing.T) {
	ru := mustRubric(t, testRubric)
	cells := codeCells(2, 1)

	first := validator.Validate(completeCode, cells, ru)
	for i := 0; i < 10; i++ {
		again := validator.Validate(completeCode, cells, ru)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

// Structurally identical submissions must score identically regardless of
// superficial differences (whitespace, comments, cell layout).
func TestValidateStructurallyIdenticalSubmissions(t *testing.T) {
	ru := mustRubric(t, testRubric)

	a := completeCode
	b := "# Homework 3 solution\n" + completeCode + "\n# done\n"

	ra := validator.Validate(a, codeCells(3, 0), ru)
	rb := validator.Validate(b, codeCells(3, 0), ru)

	if ra.BaseScore != rb.BaseScore {
		t.Errorf("base scores diverge: %v vs %v", ra.BaseScore, rb.BaseScore)
	}
	if diff := cmp.Diff(ra.Sections, rb.Sections); diff != "" {
		t.Errorf("section results diverge (-a +b):\n%s", diff)
	}
}
