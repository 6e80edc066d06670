/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package feedback turns deterministic grading evidence into written
// feedback via two independent model calls.
//
// The technical call reviews code against the rubric with the output
// comparison as primary evidence; the narrative call reviews written answers
// for semantic equivalence. Both prompts embed the validator's and
// comparator's findings so the model grounds its feedback in evidence rather
// than guessing. The two calls share no state and run concurrently.
//
// Feedback is an enhancement, not a gate: a call that fails, times out, or
// returns unparseable output marks its field unavailable. It never fabricates
// content and never affects the numeric score.
package feedback
