/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main implements the gradeflow CLI: grade notebook submissions
// against a rubric and lint rubric files.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

type config struct {
	// Provider selects the feedback backend: anthropic, openai, or gemini.
	Provider string `env:"GRADEFLOW_PROVIDER, default=anthropic"`

	// TechnicalModel and NarrativeModel override the backend's default
	// model per feedback call.
	TechnicalModel string `env:"GRADEFLOW_TECHNICAL_MODEL"`
	NarrativeModel string `env:"GRADEFLOW_NARRATIVE_MODEL"`

	// PostgresDSN enables result persistence when set.
	PostgresDSN string `env:"GRADEFLOW_POSTGRES_DSN"`

	ExecTimeout     time.Duration `env:"GRADEFLOW_EXEC_TIMEOUT, default=60s"`
	FeedbackTimeout time.Duration `env:"GRADEFLOW_FEEDBACK_TIMEOUT, default=2m"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	root := &cobra.Command{
		Use:           "gradeflow",
		Short:         "Grade notebook submissions against a rubric",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGradeCommand(&cfg))
	root.AddCommand(newRubricCommand())

	if err := root.ExecuteContext(ctx); err != nil {
		clog.FatalContextf(ctx, "%v", err)
	}
}
