/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package scoring blends the deterministic validator and comparator signals
// into one bounded score.
//
// The merge order is the load-bearing invariant of the whole grading core:
// blend, then hard caps (most restrictive wins), then additive penalties,
// then the final clamp to [0, total]. Caps before penalties means no
// generously worded model judgment can ever outscore the deterministic
// evidence.
package scoring
