/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"

	"chainguard.dev/gradeflow/grading/rubric"
	"github.com/spf13/cobra"
)

func newRubricCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rubric",
		Short: "Rubric tooling",
	}
	cmd.AddCommand(newRubricLintCommand())
	return cmd
}

func newRubricLintCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lint rubric.yaml...",
		Short: "Validate rubric files without grading anything",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed bool
			for _, path := range args {
				ru, err := rubric.LoadFile(path)
				if err != nil {
					failed = true
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%s, %g points, %d sections)\n",
					path, ru.Assignment, ru.TotalPoints, len(ru.Sections))
			}
			if failed {
				return fmt.Errorf("one or more rubrics failed validation")
			}
			return nil
		},
	}
}
