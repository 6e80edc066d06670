/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package rubric loads and validates the declarative scoring contract for one
// assignment.
//
// A rubric is loaded once per assignment and is read-only for every
// submission graded against it, so it is safe for concurrent reads. Invariant
// violations (point sums, duplicate required variables) are configuration
// errors: they fail loudly at load time and stop the batch before any
// submission is mis-scored.
package rubric
