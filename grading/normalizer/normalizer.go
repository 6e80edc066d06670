/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package normalizer

// ManualReviewThreshold is the number of distinct fixes beyond which a
// submission is flagged for manual review. The flag is advisory only and
// never blocks scoring.
const ManualReviewThreshold = 5

// Fix records one rewrite performed by a rule.
type Fix struct {
	Rule        string  `json:"rule"`
	Description string  `json:"description"`
	Penalty     float64 `json:"penalty"`
}

// Report is the outcome of normalizing one submission's code text.
type Report struct {
	// Code is the normalized code text.
	Code string `json:"-"`

	// Fixes lists every rewrite in application order.
	Fixes []Fix `json:"fixes"`

	// NeedsManualReview is set when the fix count exceeds
	// ManualReviewThreshold. Advisory only.
	NeedsManualReview bool `json:"needs_manual_review"`
}

// TotalPenalty sums the penalties of all applied fixes.
func (r Report) TotalPenalty() float64 {
	var total float64
	for _, f := range r.Fixes {
		total += f.Penalty
	}
	return total
}

// Normalizer applies an ordered rule set to student code.
type Normalizer struct {
	rules []Rule
}

// New returns a Normalizer with the given rules, or DefaultRules when none
// are provided.
func New(rules ...Rule) *Normalizer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Normalizer{rules: rules}
}

// Normalize runs every rule in order over the code text and returns the
// canonical form plus the fix report. The input is never modified.
func (n *Normalizer) Normalize(code string) Report {
	report := Report{Code: code}
	for _, rule := range n.rules {
		out, descs := rule.Apply(report.Code)
		report.Code = out
		for _, d := range descs {
			report.Fixes = append(report.Fixes, Fix{
				Rule:        rule.Name,
				Description: d,
				Penalty:     rule.Penalty,
			})
		}
	}
	report.NeedsManualReview = len(report.Fixes) > ManualReviewThreshold
	return report
}
