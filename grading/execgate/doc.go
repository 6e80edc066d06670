/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package execgate decides whether a submitted notebook already carries
// trustworthy outputs and, when it does not, re-executes it in an isolated
// working directory under a hard timeout.
//
// Execution failure is never fatal to grading: on timeout, crash, or parse
// failure the gate falls back to the original document and records what
// happened. A bug in one unrelated student cell must not blank out an
// otherwise gradable submission. The isolated working directory is removed on
// every exit path.
package execgate
