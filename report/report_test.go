/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"strings"
	"testing"

	"chainguard.dev/gradeflow/grading/feedback"
	"chainguard.dev/gradeflow/grading/grader"
	"chainguard.dev/gradeflow/grading/normalizer"
	"chainguard.dev/gradeflow/grading/scoring"
)

func sampleResult() *grader.Result {
	return &grader.Result{
		Assignment:          "hw03-sales",
		TotalPoints:         37.5,
		FinalScore:          26.25,
		BaseScore:           92.5,
		MatchRate:           55,
		ComparisonAvailable: true,
		Caps: []scoring.Cap{
			{Limit: 70, Reason: "output match rate 55% below 60%"},
		},
		Fixes: []normalizer.Fix{
			{Rule: "uncomment-library-load", Description: "uncommented library(tidyverse)", Penalty: 0.5},
		},
		PenaltyPoints: 0.5,
		Feedback: feedback.Feedback{
			TechnicalAvailable: true,
			TechnicalSummary:   "Mostly correct pipeline.",
			TechnicalFindings: []feedback.Finding{
				{Section: "Analysis", Issue: "filter threshold differs from the reference"},
			},
			NarrativeSections: []feedback.NarrativeSection{},
		},
	}
}

func TestMarkdownRendersAllSections(t *testing.T) {
	var sb strings.Builder
	if err := Markdown(&sb, sampleResult()); err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"# hw03-sales",
		"Score: 26.2 / 37.5",
		"| Base score",
		"## Score caps",
		"output match rate 55% below 60%",
		"## Automatic fixes",
		"uncommented library(tidyverse)",
		"## Technical feedback",
		"filter threshold differs",
		"## Written answers",
		"_Unavailable._",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownUngraded(t *testing.T) {
	res := &grader.Result{
		Assignment:     "hw03-sales",
		TotalPoints:    37.5,
		Ungraded:       true,
		UngradedReason: "unparseable notebook",
	}

	var sb strings.Builder
	if err := Markdown(&sb, res); err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	out := sb.String()

	if !strings.Contains(out, "Ungraded") || !strings.Contains(out, "unparseable notebook") {
		t.Errorf("report = %q, wanted ungraded banner with reason", out)
	}
	if !strings.Contains(out, "0 / 37.5") {
		t.Errorf("report = %q, wanted zero score", out)
	}
}

func TestOneline(t *testing.T) {
	got := Oneline(sampleResult())
	want := "hw03-sales: 26.2/37.5, 1 cap(s), 1 fix(es)"
	if got != want {
		t.Errorf("Oneline() = %q, wanted = %q", got, want)
	}

	ungraded := Oneline(&grader.Result{Assignment: "hw03-sales", Ungraded: true, UngradedReason: "bad json"})
	if ungraded != "hw03-sales: ungraded (bad json)" {
		t.Errorf("Oneline() = %q", ungraded)
	}
}
