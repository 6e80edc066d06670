/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package grader

import (
	"time"

	"chainguard.dev/gradeflow/grading/execgate"
	"chainguard.dev/gradeflow/grading/normalizer"
	"chainguard.dev/gradeflow/grading/scoring"
	"chainguard.dev/gradeflow/llm"
)

// Config holds every pipeline knob explicitly. There are no package-level
// defaults to mutate; two Graders with different Configs are fully
// independent.
type Config struct {
	// Rules are the normalizer rules, applied in order. Nil means
	// normalizer.DefaultRules.
	Rules []normalizer.Rule

	// Scoring is the blend/cap policy. Zero value means
	// scoring.DefaultConfig.
	Scoring scoring.Config

	// Sandbox executes notebooks that arrive without outputs. Nil disables
	// execution; such notebooks are graded on whatever outputs they carry.
	Sandbox execgate.Sandbox

	// ExecTimeout bounds one notebook execution. Zero means
	// execgate.DefaultTimeout.
	ExecTimeout time.Duration

	// Technical and Narrative are the feedback backends. Either nil marks
	// the corresponding feedback field unavailable; grading still runs.
	Technical llm.Completer
	Narrative llm.Completer

	// FeedbackTimeout bounds each feedback call. Zero means
	// feedback.DefaultCallTimeout.
	FeedbackTimeout time.Duration

	// MaxCompareUnits caps how many cells the comparator examines, keeping
	// pathological notebooks within budget. Zero means no limit.
	MaxCompareUnits int
}

func (c Config) scoring() scoring.Config {
	// Zero weights mean the policy was never set.
	if c.Scoring.ValidatorWeight == 0 && c.Scoring.ComparatorWeight == 0 {
		return scoring.DefaultConfig()
	}
	return c.Scoring
}

func (c Config) rules() []normalizer.Rule {
	if c.Rules == nil {
		return normalizer.DefaultRules()
	}
	return c.Rules
}
