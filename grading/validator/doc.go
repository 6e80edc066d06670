/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package validator checks normalized student code against a rubric and
// produces a deterministic completeness score.
//
// Validation is a pure function of (code text, rubric): no model calls, no
// timestamps, no randomness. Repeated runs over identical inputs always yield
// identical results. There is exactly one rubric-driven code path; a rubric
// missing required fields fails at load time rather than dispatching to
// assignment-specific fallbacks.
package validator
