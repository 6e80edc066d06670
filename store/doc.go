/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package store persists notebooks, rubrics, and grading results.
//
// Grading results are append-only: a regrade inserts a new record for the
// same (submission, rubric version) pair and never updates an old one, so an
// instructor can always audit why a score changed. The Postgres
// implementation backs production; Memory backs tests and dry runs.
package store
