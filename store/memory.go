/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chainguard.dev/gradeflow/grading/grader"
	"chainguard.dev/gradeflow/grading/rubric"
)

// Memory is an in-memory Interface for tests and dry runs.
type Memory struct {
	mu        sync.RWMutex
	notebooks map[string][]byte
	rubrics   map[string]*rubric.Rubric
	results   []SavedResult
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		notebooks: map[string][]byte{},
		rubrics:   map[string]*rubric.Rubric{},
	}
}

// PutNotebook seeds a notebook.
func (m *Memory) PutNotebook(id string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notebooks[id] = data
}

// PutRubric seeds a rubric.
func (m *Memory) PutRubric(id string, ru *rubric.Rubric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rubrics[id] = ru
}

// Notebook implements Interface.
func (m *Memory) Notebook(_ context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.notebooks[id]
	if !ok {
		return nil, fmt.Errorf("notebook %q: %w", id, ErrNotFound)
	}
	return data, nil
}

// Rubric implements Interface.
func (m *Memory) Rubric(_ context.Context, id string) (*rubric.Rubric, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ru, ok := m.rubrics[id]
	if !ok {
		return nil, fmt.Errorf("rubric %q: %w", id, ErrNotFound)
	}
	return ru, nil
}

// SaveResult implements Interface. Append only, like the Postgres
// implementation.
func (m *Memory) SaveResult(_ context.Context, submissionID, rubricVersion string, res *grader.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, SavedResult{
		SubmissionID:  submissionID,
		RubricVersion: rubricVersion,
		Result:        *res,
		SavedAt:       time.Now().UTC(),
	})
	return nil
}

// Results implements Interface.
func (m *Memory) Results(_ context.Context, submissionID string) ([]SavedResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []SavedResult
	for _, sr := range m.results {
		if sr.SubmissionID == submissionID {
			out = append(out, sr)
		}
	}
	return out, nil
}
