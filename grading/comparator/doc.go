/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package comparator aligns a student notebook's captured outputs against a
// reference solution's outputs and scores their semantic agreement.
//
// Comparison is layered, cheapest check first: structured row counts, then
// order-independent numeric sets under relative tolerance, then normalized
// text similarity. It is an enhancement signal, not a correctness gate: with
// no reference solution, or past the size budget, it skips cleanly and
// reports itself unavailable instead of erroring.
package comparator
