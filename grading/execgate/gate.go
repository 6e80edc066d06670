/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package execgate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"chainguard.dev/gradeflow/grading/notebook"
	"github.com/chainguard-dev/clog"
)

// Sandbox executes a notebook file in a working directory and returns the
// executed notebook bytes. Implementations must respect ctx cancellation.
type Sandbox interface {
	Execute(ctx context.Context, notebookPath, workdir string) ([]byte, error)
}

// Report records what the gate decided and what happened.
type Report struct {
	// WasNeeded is true when fewer than the coverage threshold of code
	// cells carried outputs.
	WasNeeded bool `json:"was_needed"`

	// Attempted is true when execution was actually started.
	Attempted bool `json:"attempted"`

	// Succeeded is true when fresh outputs replaced the originals.
	Succeeded bool `json:"succeeded"`

	// ErrorMessage carries the failure when Attempted && !Succeeded.
	ErrorMessage string `json:"error_message,omitempty"`

	// PathRewrites and DisabledSetwd count the pre-execution source edits.
	PathRewrites  int `json:"path_rewrites,omitempty"`
	DisabledSetwd int `json:"disabled_setwd,omitempty"`
}

// coverageThreshold is the fraction of code cells that must carry outputs
// for the submitted document to be trusted as-is.
const coverageThreshold = 0.5

// DefaultTimeout is the hard wall-clock limit for one notebook execution.
const DefaultTimeout = 60 * time.Second

// Gate wraps a Sandbox with the decision rule, isolation, and fallback.
type Gate struct {
	sandbox Sandbox
	timeout time.Duration
}

// New returns a Gate using the given sandbox. A nil sandbox disables
// execution entirely; the gate then always falls back to the original.
func New(sandbox Sandbox, opts ...Option) *Gate {
	g := &Gate{sandbox: sandbox, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Option configures a Gate.
type Option func(*Gate)

// WithTimeout overrides the execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gate) { g.timeout = d }
}

// Prepare returns the document to grade. If the submitted document's output
// coverage is sufficient it is returned as-is; otherwise the gate executes a
// path-rewritten copy in an isolated directory seeded with the data files.
// On any execution failure the original document is returned unchanged.
func (g *Gate) Prepare(ctx context.Context, doc *notebook.Document, dataDir string) (*notebook.Document, Report) {
	log := clog.FromContext(ctx)
	var report Report

	if coverage(doc) >= coverageThreshold {
		log.Info("Submitted outputs trusted, skipping execution")
		return doc, report
	}
	report.WasNeeded = true

	if g.sandbox == nil {
		report.ErrorMessage = "no execution sandbox configured"
		log.Warn("Execution needed but no sandbox configured, grading submitted outputs")
		return doc, report
	}
	report.Attempted = true

	executed, err := g.execute(ctx, doc, dataDir, &report)
	if err != nil {
		report.ErrorMessage = err.Error()
		log.With("error", err).Warn("Notebook execution failed, falling back to submitted outputs")
		return doc, report
	}

	report.Succeeded = true
	log.Info("Notebook executed, grading fresh outputs")
	return executed, report
}

// execute runs the notebook in a fresh isolated directory. The directory is
// removed on every exit path.
func (g *Gate) execute(ctx context.Context, doc *notebook.Document, dataDir string, report *Report) (*notebook.Document, error) {
	workdir, err := os.MkdirTemp("", "gradeflow-exec-*")
	if err != nil {
		return nil, fmt.Errorf("creating working directory: %w", err)
	}
	defer os.RemoveAll(workdir)

	if dataDir != "" {
		if err := copyDataFiles(dataDir, workdir); err != nil {
			return nil, fmt.Errorf("seeding data files: %w", err)
		}
	}

	prepared, rewrites, disabled := rewriteForExecution(doc)
	report.PathRewrites = rewrites
	report.DisabledSetwd = disabled

	data, err := prepared.Bytes()
	if err != nil {
		return nil, fmt.Errorf("serializing notebook: %w", err)
	}
	nbPath := filepath.Join(workdir, "submission.ipynb")
	if err := os.WriteFile(nbPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("writing notebook: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.sandbox.Execute(ctx, nbPath, workdir)
	if err != nil {
		return nil, fmt.Errorf("executing notebook: %w", err)
	}

	executed, err := notebook.Parse(out)
	if err != nil {
		return nil, fmt.Errorf("parsing executed notebook: %w", err)
	}
	return executed, nil
}

func coverage(doc *notebook.Document) float64 {
	cells := doc.CodeCells()
	if len(cells) == 0 {
		return 1
	}
	var withOutput int
	for _, c := range cells {
		if c.HasOutput() {
			withOutput++
		}
	}
	return float64(withOutput) / float64(len(cells))
}

// copyDataFiles copies the regular files of src into dst (flat, no
// recursion: assignment data directories are flat by convention).
func copyDataFiles(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := copyFile(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
