/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package normalizer rewrites common syntax mistakes in extracted student
// code into a canonical form, recording every rewrite with a fixed penalty.
//
// Rules are pattern-based and conservative: only constructs with an
// unambiguous canonical form are rewritten. Each rule is an independent unit
// so regressions stay localized. The normalizer never touches the original
// document; it operates on extracted code text only.
package normalizer
