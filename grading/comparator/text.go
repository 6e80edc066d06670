/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package comparator

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// textSimilarity scores two outputs in [0, 1] on their normalized text.
// Normalization lowercases, strips punctuation, and sorts tokens so ordering,
// whitespace, and superficial phrasing differences do not count against the
// student.
func textSimilarity(a, b string) float64 {
	na, nb := normalizeText(a), normalizeText(b)
	if na == nb {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(na, nb, false)
	dist := dmp.DiffLevenshtein(diffs)
	longest := len([]rune(na))
	if l := len([]rune(nb)); l > longest {
		longest = l
	}
	return 1 - float64(dist)/float64(longest)
}

// normalizeText lowercases, drops punctuation, and sorts whitespace-delimited
// tokens into a canonical order.
func normalizeText(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune(' ')
		}
	}
	tokens := strings.Fields(sb.String())
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
