/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chainguard.dev/gradeflow/grading/execgate"
	"chainguard.dev/gradeflow/grading/grader"
	"chainguard.dev/gradeflow/grading/rubric"
	"chainguard.dev/gradeflow/llm"
	"chainguard.dev/gradeflow/report"
	"chainguard.dev/gradeflow/store"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"github.com/spf13/cobra"
	"google.golang.org/genai"
)

func newGradeCommand(cfg *config) *cobra.Command {
	var (
		rubricPath    string
		referencePath string
		dataDir       string
		rubricVersion string
		noExec        bool
		noFeedback    bool
		oneline       bool
	)

	cmd := &cobra.Command{
		Use:   "grade notebook.ipynb...",
		Short: "Grade one or more notebook submissions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := clog.FromContext(ctx)

			ru, err := rubric.LoadFile(rubricPath)
			if err != nil {
				return fmt.Errorf("loading rubric: %w", err)
			}

			var reference []byte
			if referencePath != "" {
				reference, err = os.ReadFile(referencePath)
				if err != nil {
					return fmt.Errorf("reading reference notebook: %w", err)
				}
			}

			gcfg := grader.Config{
				ExecTimeout:     cfg.ExecTimeout,
				FeedbackTimeout: cfg.FeedbackTimeout,
			}
			if !noExec {
				gcfg.Sandbox = &execgate.NBConvert{}
			}
			if !noFeedback {
				gcfg.Technical, gcfg.Narrative, err = completers(ctx, cfg)
				if err != nil {
					return fmt.Errorf("configuring feedback backend: %w", err)
				}
			}

			g, err := grader.New(ru, gcfg)
			if err != nil {
				return err
			}

			var st *store.Postgres
			if cfg.PostgresDSN != "" {
				st, err = store.NewPostgres(ctx, cfg.PostgresDSN)
				if err != nil {
					return fmt.Errorf("connecting to store: %w", err)
				}
				defer st.Close()
				if err := st.Migrate(ctx); err != nil {
					return fmt.Errorf("migrating store: %w", err)
				}
			}

			for _, path := range args {
				submission, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading submission %s: %w", path, err)
				}

				res, err := g.Grade(ctx, submission, reference, dataDir)
				if err != nil {
					return fmt.Errorf("grading %s: %w", path, err)
				}

				if oneline {
					fmt.Fprintln(cmd.OutOrStdout(), report.Oneline(res))
				} else {
					if err := report.Markdown(cmd.OutOrStdout(), res); err != nil {
						return fmt.Errorf("rendering report for %s: %w", path, err)
					}
				}

				if st != nil {
					id := submissionID(path)
					if err := st.SaveResult(ctx, id, rubricVersion, res); err != nil {
						return fmt.Errorf("saving result for %s: %w", id, err)
					}
					log.Infof("saved result for %s (rubric %s)", id, rubricVersion)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&rubricPath, "rubric", "", "path to the rubric YAML file")
	cmd.Flags().StringVar(&referencePath, "reference", "", "path to the reference solution notebook")
	cmd.Flags().StringVar(&dataDir, "data", "", "directory of data files to seed into the execution workdir")
	cmd.Flags().StringVar(&rubricVersion, "rubric-version", "v1", "rubric version recorded with saved results")
	cmd.Flags().BoolVar(&noExec, "no-exec", false, "never execute submissions, grade existing outputs only")
	cmd.Flags().BoolVar(&noFeedback, "no-feedback", false, "skip model-generated feedback")
	cmd.Flags().BoolVar(&oneline, "oneline", false, "print one summary line per submission instead of a full report")
	_ = cmd.MarkFlagRequired("rubric")

	return cmd
}

// completers builds the technical and narrative feedback backends from the
// configured provider. Both calls share one client.
func completers(ctx context.Context, cfg *config) (llm.Completer, llm.Completer, error) {
	build := func(model string) (llm.Completer, error) {
		var opts []llm.Option
		if model != "" {
			opts = append(opts, llm.WithModel(model))
		}
		switch cfg.Provider {
		case "anthropic":
			return llm.NewAnthropic(anthropic.NewClient(), opts...)
		case "openai":
			return llm.NewOpenAI(openai.NewClient(), opts...)
		case "gemini":
			client, err := genai.NewClient(ctx, &genai.ClientConfig{})
			if err != nil {
				return nil, err
			}
			return llm.NewGemini(client, opts...)
		default:
			return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
		}
	}

	technical, err := build(cfg.TechnicalModel)
	if err != nil {
		return nil, nil, err
	}
	narrative, err := build(cfg.NarrativeModel)
	if err != nil {
		return nil, nil, err
	}
	return technical, narrative, nil
}

// submissionID derives a stable identifier from the notebook filename.
func submissionID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
