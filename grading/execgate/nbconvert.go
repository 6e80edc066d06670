/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package execgate

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/chainguard-dev/clog"
)

// NBConvert is a Sandbox backed by `jupyter nbconvert --execute`. The process
// inherits ctx cancellation, so the gate's timeout kills a runaway kernel.
type NBConvert struct {
	// Binary is the jupyter executable, "jupyter" by default.
	Binary string
}

// Execute implements Sandbox.
func (n *NBConvert) Execute(ctx context.Context, notebookPath, workdir string) ([]byte, error) {
	binary := n.Binary
	if binary == "" {
		binary = "jupyter"
	}

	outName := "executed.ipynb"
	cmd := exec.CommandContext(ctx, binary, "nbconvert",
		"--to", "notebook",
		"--execute",
		"--allow-errors",
		"--output", outName,
		filepath.Base(notebookPath),
	)
	cmd.Dir = workdir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	clog.FromContext(ctx).With("workdir", workdir).Info("Executing notebook via nbconvert")
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("notebook execution timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("nbconvert failed: %w: %s", err, stderr.String())
	}

	out, err := os.ReadFile(filepath.Join(workdir, outName))
	if err != nil {
		return nil, fmt.Errorf("reading executed notebook: %w", err)
	}
	return out, nil
}
