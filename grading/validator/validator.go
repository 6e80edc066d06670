/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package validator

import (
	"regexp"

	"chainguard.dev/gradeflow/grading/notebook"
	"chainguard.dev/gradeflow/grading/rubric"
)

// SectionStatus classifies how completely a rubric section was addressed.
type SectionStatus string

const (
	// Complete means every required variable and function was located.
	Complete SectionStatus = "complete"
	// Partial means the variables were located but not all functions;
	// it earns half credit.
	Partial SectionStatus = "partial"
	// Missing means required variables were not located.
	Missing SectionStatus = "missing"
)

// credit returns the fraction of section points the status earns.
func (s SectionStatus) credit() float64 {
	switch s {
	case Complete:
		return 1.0
	case Partial:
		return 0.5
	default:
		return 0
	}
}

// SectionResult records one section's status with the evidence behind it.
type SectionResult struct {
	Name   string        `json:"name"`
	Status SectionStatus `json:"status"`
	Points float64       `json:"points"`

	FoundVariables   []string `json:"found_variables,omitempty"`
	MissingVariables []string `json:"missing_variables,omitempty"`
	FoundFunctions   []string `json:"found_functions,omitempty"`
	MissingFunctions []string `json:"missing_functions,omitempty"`
}

// Result is the deterministic validation outcome for one submission.
// Immutable once produced; it is consumed by the score merger and embedded
// verbatim into feedback prompts.
type Result struct {
	// Variables maps each globally required variable to whether an
	// assignment to it was located.
	Variables map[string]bool `json:"variables"`

	Sections []SectionResult `json:"sections"`

	// ExecutionRate is cells-with-output over total code cells, in [0, 1].
	// It is reported as a separate signal and never zeroes the base score by
	// itself.
	ExecutionRate float64 `json:"execution_rate"`

	// BaseScore is the deterministic completeness score in [0, 100].
	BaseScore float64 `json:"base_score"`
}

// MissingRequired returns the globally required variables that were not
// located, in rubric order.
func (r *Result) MissingRequired(ru *rubric.Rubric) []string {
	var missing []string
	for _, v := range ru.RequiredVariables {
		if !r.Variables[v] {
			missing = append(missing, v)
		}
	}
	return missing
}

// Weighting of section completeness vs. global variable presence in the base
// score. When a rubric defines no sections the base score is the variable
// presence score alone, never a collapse toward zero.
const (
	sectionWeight  = 0.7
	presenceWeight = 0.3
)

// Validate checks normalized code text against the rubric. The cells argument
// supplies the execution-rate signal; scoring itself depends only on the code
// text and rubric.
func Validate(code string, cells []notebook.Cell, ru *rubric.Rubric) *Result {
	res := &Result{Variables: map[string]bool{}}

	for _, v := range ru.RequiredVariables {
		res.Variables[v] = variableAssigned(code, v)
	}

	var earned, possible float64
	for _, s := range ru.Sections {
		sr := SectionResult{Name: s.Name, Points: s.Points}
		for _, v := range s.Variables {
			if variableAssigned(code, v) {
				sr.FoundVariables = append(sr.FoundVariables, v)
			} else {
				sr.MissingVariables = append(sr.MissingVariables, v)
			}
		}
		for _, f := range s.Functions {
			if functionCalled(code, f) {
				sr.FoundFunctions = append(sr.FoundFunctions, f)
			} else {
				sr.MissingFunctions = append(sr.MissingFunctions, f)
			}
		}

		switch {
		case len(sr.MissingVariables) == 0 && len(sr.MissingFunctions) == 0:
			sr.Status = Complete
		case len(sr.MissingVariables) == 0:
			sr.Status = Partial
		default:
			sr.Status = Missing
		}

		earned += sr.Status.credit() * s.Points
		possible += s.Points
		res.Sections = append(res.Sections, sr)
	}

	presence := presenceScore(res.Variables, ru.RequiredVariables)
	if possible == 0 {
		// No section breakdown: score on variable presence alone.
		res.BaseScore = presence
	} else {
		res.BaseScore = sectionWeight*(earned/possible*100) + presenceWeight*presence
	}

	res.ExecutionRate = executionRate(cells)
	return res
}

func presenceScore(found map[string]bool, required []string) float64 {
	if len(required) == 0 {
		return 100
	}
	var n int
	for _, v := range required {
		if found[v] {
			n++
		}
	}
	return float64(n) / float64(len(required)) * 100
}

func executionRate(cells []notebook.Cell) float64 {
	var code, withOutput int
	for _, c := range cells {
		if c.Kind != notebook.Code {
			continue
		}
		code++
		if c.HasOutput() {
			withOutput++
		}
	}
	if code == 0 {
		return 0
	}
	return float64(withOutput) / float64(code)
}

// variableAssigned reports whether the code contains an unambiguous
// assignment to name. A word boundary plus the assignment operator is
// required so names that are substrings of other names never false-positive.
// R identifiers may contain dots, so the boundary excludes [A-Za-z0-9._].
func variableAssigned(code, name string) bool {
	re := regexp.MustCompile(`(?m)(^|[^A-Za-z0-9._])` + regexp.QuoteMeta(name) + `\s*(<<?-|=[^=])`)
	return re.MatchString(code)
}

// functionCalled reports whether the code calls the named function.
func functionCalled(code, name string) bool {
	re := regexp.MustCompile(`(^|[^A-Za-z0-9._])` + regexp.QuoteMeta(name) + `\s*\(`)
	return re.MatchString(code)
}
