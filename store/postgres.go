/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"chainguard.dev/gradeflow/grading/grader"
	"chainguard.dev/gradeflow/grading/rubric"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied by Migrate. grading_results has no update path: the
// append-only discipline is enforced by the queries this package exposes.
const schema = `
create table if not exists notebooks (
	id   text primary key,
	data bytea not null
);
create table if not exists rubrics (
	id   text primary key,
	yaml text not null
);
create table if not exists grading_results (
	id             bigserial primary key,
	submission_id  text not null,
	rubric_version text not null,
	result         jsonb not null,
	created_at     timestamptz not null default now()
);
create index if not exists grading_results_submission_idx
	on grading_results (submission_id, created_at);
`

// Postgres implements Interface on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn and verifies the connection.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Migrate applies the schema. Safe to run repeatedly.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Notebook implements Interface.
func (p *Postgres) Notebook(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `select data from notebooks where id = $1`, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("notebook %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading notebook %q: %w", id, err)
	}
	return data, nil
}

// SaveNotebook stores raw notebook bytes under id, replacing any previous
// upload for the same submission.
func (p *Postgres) SaveNotebook(ctx context.Context, id string, data []byte) error {
	_, err := p.pool.Exec(ctx,
		`insert into notebooks (id, data) values ($1, $2)
		 on conflict (id) do update set data = excluded.data`, id, data)
	if err != nil {
		return fmt.Errorf("saving notebook %q: %w", id, err)
	}
	return nil
}

// Rubric implements Interface. The stored YAML is re-validated on every
// load, so a rubric that was edited in place cannot bypass its invariants.
func (p *Postgres) Rubric(ctx context.Context, id string) (*rubric.Rubric, error) {
	var raw string
	err := p.pool.QueryRow(ctx, `select yaml from rubrics where id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("rubric %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading rubric %q: %w", id, err)
	}
	return rubric.Load([]byte(raw))
}

// SaveRubric stores rubric YAML under id after validating it.
func (p *Postgres) SaveRubric(ctx context.Context, id string, raw []byte) error {
	if _, err := rubric.Load(raw); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx,
		`insert into rubrics (id, yaml) values ($1, $2)
		 on conflict (id) do update set yaml = excluded.yaml`, id, string(raw))
	if err != nil {
		return fmt.Errorf("saving rubric %q: %w", id, err)
	}
	return nil
}

// SaveResult implements Interface. Insert only.
func (p *Postgres) SaveResult(ctx context.Context, submissionID, rubricVersion string, res *grader.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`insert into grading_results (submission_id, rubric_version, result) values ($1, $2, $3)`,
		submissionID, rubricVersion, payload)
	if err != nil {
		return fmt.Errorf("saving result for %q: %w", submissionID, err)
	}
	return nil
}

// Results implements Interface.
func (p *Postgres) Results(ctx context.Context, submissionID string) ([]SavedResult, error) {
	rows, err := p.pool.Query(ctx,
		`select submission_id, rubric_version, result, created_at
		 from grading_results where submission_id = $1 order by created_at asc`,
		submissionID)
	if err != nil {
		return nil, fmt.Errorf("loading results for %q: %w", submissionID, err)
	}
	defer rows.Close()

	var out []SavedResult
	for rows.Next() {
		var sr SavedResult
		var payload []byte
		if err := rows.Scan(&sr.SubmissionID, &sr.RubricVersion, &payload, &sr.SavedAt); err != nil {
			return nil, fmt.Errorf("scanning result row: %w", err)
		}
		if err := json.Unmarshal(payload, &sr.Result); err != nil {
			return nil, fmt.Errorf("unmarshaling result for %q: %w", submissionID, err)
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	return out, nil
}
