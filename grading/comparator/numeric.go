/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package comparator

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"chainguard.dev/gradeflow/grading/rubric"
)

// rowCountPatterns match the stereotyped row-count banners printed by
// tidyverse and base R tabular results.
var rowCountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`A tibble:\s*([\d,]+)\s*[×x]`),
	regexp.MustCompile(`Rows:\s*([\d,]+)`),
	regexp.MustCompile(`([\d,]+)\s+rows?\b`),
	regexp.MustCompile(`\[\s*([\d,]+)\s+rows?\s+x\s+\d+\s+columns?\s*\]`),
}

// extractRowCount pulls a row count out of a structured result banner.
func extractRowCount(text string) (int, bool) {
	for _, re := range rowCountPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			digits := regexp.MustCompile(`,`).ReplaceAllString(m[1], "")
			n, err := strconv.Atoi(digits)
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// rowCountWithin applies the absolute and relative row-count slack; the
// student count passes if it is within either.
func rowCountWithin(got, want int, tol rubric.Tolerance) bool {
	diff := math.Abs(float64(got - want))
	if diff <= float64(tol.RowCountAbsolute) {
		return true
	}
	if want > 0 && diff/float64(want) <= tol.RowCountRelative {
		return true
	}
	return false
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`)

// extractNumbers returns every numeric value in the text, in occurrence
// order. Values inside identifiers are excluded by requiring a non-word
// leading boundary in the scan.
func extractNumbers(text string) []float64 {
	var nums []float64
	for _, loc := range numberPattern.FindAllStringIndex(text, -1) {
		// Skip digits glued to identifiers (e.g. "hw03", "x2").
		if loc[0] > 0 {
			prev := text[loc[0]-1]
			if prev == '_' || ('a' <= prev && prev <= 'z') || ('A' <= prev && prev <= 'Z') {
				continue
			}
		}
		v, err := strconv.ParseFloat(text[loc[0]:loc[1]], 64)
		if err == nil {
			nums = append(nums, v)
		}
	}
	return nums
}

// numbersMatch compares two equal-length numeric sets order-independently:
// each sorts its values and compares pairwise under the relative tolerance.
func numbersMatch(got, want []float64, relTol float64) bool {
	if len(got) != len(want) {
		return false
	}
	g := append([]float64(nil), got...)
	w := append([]float64(nil), want...)
	sort.Float64s(g)
	sort.Float64s(w)
	for i := range g {
		if !withinRelative(g[i], w[i], relTol) {
			return false
		}
	}
	return true
}

func withinRelative(got, want, relTol float64) bool {
	if got == want {
		return true
	}
	denom := math.Abs(want)
	if denom == 0 {
		// Relative tolerance is meaningless against zero; fall back to the
		// tolerance as an absolute bound.
		return math.Abs(got) <= relTol
	}
	return math.Abs(got-want)/denom <= relTol
}
