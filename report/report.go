/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package report renders a grading result as markdown for instructors and
// students.
package report

import (
	"fmt"
	"io"
	"strings"

	"chainguard.dev/gradeflow/grading/grader"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Markdown renders the result to w.
func Markdown(w io.Writer, res *grader.Result) error {
	fmt.Fprintf(w, "# %s\n\n", res.Assignment)

	if res.Ungraded {
		fmt.Fprintf(w, "**Ungraded**: %s\n\nScore: 0 / %g\n", res.UngradedReason, res.TotalPoints)
		return nil
	}

	fmt.Fprintf(w, "**Score: %.1f / %g**\n\n", res.FinalScore, res.TotalPoints)

	summary := newTable([]string{"Signal", "Value"}, w)
	summary.Append([]string{"Base score", fmt.Sprintf("%.1f%%", res.BaseScore)})
	if res.ComparisonAvailable {
		summary.Append([]string{"Output match rate", fmt.Sprintf("%.1f%%", res.MatchRate)})
	} else {
		summary.Append([]string{"Output match rate", "unavailable"})
	}
	summary.Append([]string{"Penalty points", fmt.Sprintf("%.1f", res.PenaltyPoints)})
	if err := summary.Render(); err != nil {
		return fmt.Errorf("rendering summary table: %w", err)
	}
	fmt.Fprintln(w)

	if len(res.Caps) > 0 {
		fmt.Fprintf(w, "## Score caps\n\n")
		caps := newTable([]string{"Ceiling", "Reason"}, w)
		for _, c := range res.Caps {
			caps.Append([]string{fmt.Sprintf("%.0f%%", c.Limit), c.Reason})
		}
		if err := caps.Render(); err != nil {
			return fmt.Errorf("rendering caps table: %w", err)
		}
		fmt.Fprintln(w)
	}

	if len(res.Fixes) > 0 {
		fmt.Fprintf(w, "## Automatic fixes\n\n")
		fixes := newTable([]string{"Rule", "Fix", "Penalty"}, w)
		for _, f := range res.Fixes {
			fixes.Append([]string{f.Rule, f.Description, fmt.Sprintf("%.1f", f.Penalty)})
		}
		if err := fixes.Render(); err != nil {
			return fmt.Errorf("rendering fixes table: %w", err)
		}
		if res.NeedsManualReview {
			fmt.Fprintf(w, "\nFlagged for manual review: %d fixes applied.\n", len(res.Fixes))
		}
		fmt.Fprintln(w)
	}

	writeFeedback(w, res)
	return nil
}

func writeFeedback(w io.Writer, res *grader.Result) {
	fmt.Fprintf(w, "## Technical feedback\n\n")
	if !res.Feedback.TechnicalAvailable {
		fmt.Fprintf(w, "_Unavailable._\n\n")
	} else {
		if res.Feedback.TechnicalSummary != "" {
			fmt.Fprintf(w, "%s\n\n", res.Feedback.TechnicalSummary)
		}
		for _, f := range res.Feedback.TechnicalFindings {
			line := fmt.Sprintf("- **%s**: %s", f.Section, f.Issue)
			if f.Evidence != "" {
				line += fmt.Sprintf(" (%s)", f.Evidence)
			}
			fmt.Fprintln(w, line)
		}
		if len(res.Feedback.TechnicalFindings) > 0 {
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "## Written answers\n\n")
	if !res.Feedback.NarrativeAvailable {
		fmt.Fprintf(w, "_Unavailable._\n")
		return
	}
	if res.Feedback.NarrativeSummary != "" {
		fmt.Fprintf(w, "%s\n\n", res.Feedback.NarrativeSummary)
	}
	for _, s := range res.Feedback.NarrativeSections {
		fmt.Fprintf(w, "### %s\n\n%s\n", s.Topic, s.Assessment)
		if len(s.Suggestions) > 0 {
			fmt.Fprintf(w, "\nSuggestions:\n")
			for _, sug := range s.Suggestions {
				fmt.Fprintf(w, "- %s\n", sug)
			}
		}
		fmt.Fprintln(w)
	}
}

// newTable applies the standard markdown table formatting used across all
// reports.
func newTable(headers []string, w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		MaxWidth: 100,
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// Oneline is the compact batch-log form of a result.
func Oneline(res *grader.Result) string {
	if res.Ungraded {
		return fmt.Sprintf("%s: ungraded (%s)", res.Assignment, res.UngradedReason)
	}
	parts := []string{fmt.Sprintf("%s: %.1f/%g", res.Assignment, res.FinalScore, res.TotalPoints)}
	if len(res.Caps) > 0 {
		parts = append(parts, fmt.Sprintf("%d cap(s)", len(res.Caps)))
	}
	if len(res.Fixes) > 0 {
		parts = append(parts, fmt.Sprintf("%d fix(es)", len(res.Fixes)))
	}
	return strings.Join(parts, ", ")
}
