/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package rubric

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvariant marks rubric invariant violations. These are configuration
// errors, not per-submission errors: callers must stop the batch.
var ErrInvariant = errors.New("rubric invariant violated")

// pointSumEpsilon absorbs float accumulation noise in the point-sum check.
const pointSumEpsilon = 1e-6

// Tolerance is the comparison policy for the output comparator.
type Tolerance struct {
	// NumericRelative is the relative tolerance for numeric comparisons.
	NumericRelative float64 `yaml:"numeric_relative" json:"numeric_relative"`

	// RowCountAbsolute is the absolute row-count slack before a structured
	// result is considered a mismatch.
	RowCountAbsolute int `yaml:"row_count_absolute" json:"row_count_absolute"`

	// RowCountRelative is the fractional row-count slack.
	RowCountRelative float64 `yaml:"row_count_relative" json:"row_count_relative"`

	// TextThreshold is the acceptance threshold for normalized-text
	// similarity, in [0, 1].
	TextThreshold float64 `yaml:"text_threshold" json:"text_threshold"`
}

// defaults fills zero-valued fields with the standard policy.
func (t *Tolerance) defaults() {
	if t.NumericRelative == 0 {
		t.NumericRelative = 0.01
	}
	if t.RowCountAbsolute == 0 {
		t.RowCountAbsolute = 2
	}
	if t.RowCountRelative == 0 {
		t.RowCountRelative = 0.05
	}
	if t.TextThreshold == 0 {
		t.TextThreshold = 0.6
	}
}

// Section is a named, weighted slice of the rubric.
type Section struct {
	Name      string   `yaml:"name" json:"name"`
	Points    float64  `yaml:"points" json:"points"`
	Variables []string `yaml:"variables" json:"variables,omitempty"`
	Functions []string `yaml:"functions" json:"functions,omitempty"`
}

// Rubric is the scoring contract for one assignment.
type Rubric struct {
	// Assignment identifies the assignment this rubric grades.
	Assignment string `yaml:"assignment" json:"assignment"`

	// TotalPoints is the assignment's point total. Section points plus
	// ReflectionPoints must sum to it exactly.
	TotalPoints float64 `yaml:"total_points" json:"total_points"`

	// ReflectionPoints is the fixed component for written reflection
	// answers, outside any section.
	ReflectionPoints float64 `yaml:"reflection_points" json:"reflection_points"`

	Sections []Section `yaml:"sections" json:"sections,omitempty"`

	// RequiredVariables are globally required variable names, independent of
	// section membership.
	RequiredVariables []string `yaml:"required_variables" json:"required_variables,omitempty"`

	Tolerance Tolerance `yaml:"tolerance" json:"tolerance"`
}

// Load parses a rubric from YAML and validates its invariants.
func Load(data []byte) (*Rubric, error) {
	var r Rubric
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing rubric: %w", err)
	}
	r.Tolerance.defaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadFile reads and parses a rubric YAML file.
func LoadFile(path string) (*Rubric, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rubric %s: %w", path, err)
	}
	r, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Validate enforces the rubric's structural invariants. Any violation is a
// configuration error wrapping ErrInvariant.
func (r *Rubric) Validate() error {
	if r.Assignment == "" {
		return fmt.Errorf("%w: assignment identifier is empty", ErrInvariant)
	}
	if r.TotalPoints <= 0 {
		return fmt.Errorf("%w: total_points must be positive, got %v", ErrInvariant, r.TotalPoints)
	}

	var sum float64
	for _, s := range r.Sections {
		if s.Name == "" {
			return fmt.Errorf("%w: section with empty name", ErrInvariant)
		}
		if s.Points < 0 {
			return fmt.Errorf("%w: section %q has negative points", ErrInvariant, s.Name)
		}
		sum += s.Points
	}
	sum += r.ReflectionPoints
	if math.Abs(sum-r.TotalPoints) > pointSumEpsilon {
		return fmt.Errorf("%w: section points (%v) + reflection points (%v) = %v, want total_points %v",
			ErrInvariant, sum-r.ReflectionPoints, r.ReflectionPoints, sum, r.TotalPoints)
	}

	// A variable required by two different sections would double-count.
	seen := map[string]string{}
	for _, s := range r.Sections {
		for _, v := range s.Variables {
			if prev, ok := seen[v]; ok && prev != s.Name {
				return fmt.Errorf("%w: variable %q required by sections %q and %q",
					ErrInvariant, v, prev, s.Name)
			}
			seen[v] = s.Name
		}
	}
	return nil
}

// SectionFor returns the section that requires the given variable, if any.
func (r *Rubric) SectionFor(variable string) (Section, bool) {
	for _, s := range r.Sections {
		for _, v := range s.Variables {
			if v == variable {
				return s, true
			}
		}
	}
	return Section{}, false
}
