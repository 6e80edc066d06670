/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"context"
	"errors"
	"time"

	"chainguard.dev/gradeflow/grading/grader"
	"chainguard.dev/gradeflow/grading/rubric"
)

// ErrNotFound is returned when the requested document does not exist.
var ErrNotFound = errors.New("not found")

// SavedResult is one persisted grading record.
type SavedResult struct {
	SubmissionID  string        `json:"submission_id"`
	RubricVersion string        `json:"rubric_version"`
	Result        grader.Result `json:"result"`
	SavedAt       time.Time     `json:"saved_at"`
}

// Interface is the document store the grading core depends on: load by
// identifier, save by identifier, nothing more.
type Interface interface {
	// Notebook returns the raw notebook bytes for a submission.
	Notebook(ctx context.Context, id string) ([]byte, error)

	// Rubric returns the validated rubric for an assignment.
	Rubric(ctx context.Context, id string) (*rubric.Rubric, error)

	// SaveResult appends one grading record. It never overwrites.
	SaveResult(ctx context.Context, submissionID, rubricVersion string, res *grader.Result) error

	// Results returns every grading record for a submission, oldest first.
	Results(ctx context.Context, submissionID string) ([]SavedResult, error)
}
