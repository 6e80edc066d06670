/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package grader wires the grading pipeline end to end: extract, normalize,
// execute if needed, validate and compare, merge the score, generate
// feedback, and assemble the immutable result.
//
// The pipeline is sequential per submission; the only concurrency is inside
// the feedback stage, whose two model calls are independent. Submissions
// share no state, so callers may grade a batch in parallel.
//
// A well-formed rubric and a parseable notebook always produce a result. An
// unparseable notebook produces an ungraded zero result with the reason
// recorded; it is never silently defaulted to a passing score.
package grader
