/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package normalizer

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule is one independently testable rewrite. Apply returns the rewritten
// code and a description per rewrite it performed; an unchanged input returns
// the input and no descriptions.
type Rule struct {
	// Name identifies the rule in Fix records and tests.
	Name string

	// Penalty is the per-rewrite penalty in rubric points. Pure formatting
	// rules carry zero.
	Penalty float64

	// Apply performs the rewrite.
	Apply func(code string) (string, []string)
}

// DefaultRules returns the standard rule set in application order.
func DefaultRules() []Rule {
	return []Rule{
		SmartPunctuation(),
		UncommentLibraryLoad(),
		RepairPipeOperator(),
		PipeSelfReference(),
	}
}

var commentedLibrary = regexp.MustCompile(`(?m)^(\s*)#+\s*((?:library|require)\s*\([^)]*\))\s*$`)

// UncommentLibraryLoad uncomments commented-out library/require lines.
// Students frequently comment these out after an install step and forget to
// restore them, which breaks every downstream cell.
func UncommentLibraryLoad() Rule {
	return Rule{
		Name:    "uncomment-library-load",
		Penalty: 0.5,
		Apply: func(code string) (string, []string) {
			var descs []string
			out := commentedLibrary.ReplaceAllStringFunc(code, func(m string) string {
				sub := commentedLibrary.FindStringSubmatch(m)
				descs = append(descs, fmt.Sprintf("uncommented %s", strings.TrimSpace(sub[2])))
				return sub[1] + sub[2]
			})
			return out, descs
		},
	}
}

var brokenPipe = regexp.MustCompile(`%\s+>\s*%|%>\s+%|%>%%`)

// RepairPipeOperator repairs malformed magrittr pipe operators such as
// "% >%" or "%>%%".
func RepairPipeOperator() Rule {
	return Rule{
		Name:    "repair-pipe-operator",
		Penalty: 0.5,
		Apply: func(code string) (string, []string) {
			var descs []string
			out := brokenPipe.ReplaceAllStringFunc(code, func(m string) string {
				descs = append(descs, fmt.Sprintf("repaired malformed pipe %q", m))
				return "%>%"
			})
			return out, descs
		},
	}
}

var chainHead = regexp.MustCompile(`^\s*(?:[A-Za-z.][A-Za-z0-9._]*\s*(?:<-|=)\s*)?([A-Za-z.][A-Za-z0-9._]*)\s*%>%`)

// PipeSelfReference rewrites pipe stages that reference the piped dataframe
// through its own column-access syntax (df %>% filter(df$x > 1)) to the
// implicit form (df %>% filter(x > 1)). Only the chain's own head identifier
// is rewritten; references to other frames are left alone.
func PipeSelfReference() Rule {
	return Rule{
		Name:    "pipe-self-reference",
		Penalty: 0.5,
		Apply: func(code string) (string, []string) {
			var descs []string
			lines := strings.Split(code, "\n")

			head := "" // current chain's head identifier, "" outside a chain
			for i, line := range lines {
				headLine := false
				if head == "" {
					if m := chainHead.FindStringSubmatch(line); m != nil {
						head = m[1]
						headLine = true
					}
				}
				if head == "" {
					continue
				}

				// Rewrite $-references to the head after the first pipe on
				// the head line, and anywhere on continuation lines.
				search := line
				offset := 0
				if idx := strings.Index(line, "%>%"); headLine && idx >= 0 {
					offset = idx
					search = line[idx:]
				}
				ref := regexp.MustCompile(`\b` + regexp.QuoteMeta(head) + `\$`)
				if ref.MatchString(search) {
					lines[i] = line[:offset] + ref.ReplaceAllString(search, "")
					descs = append(descs, fmt.Sprintf("removed %s$ self-reference inside %s pipe chain", head, head))
				}

				// A chain continues while the line ends with a pipe.
				if !strings.HasSuffix(strings.TrimRight(lines[i], " \t"), "%>%") {
					head = ""
				}
			}
			return strings.Join(lines, "\n"), descs
		},
	}
}

var smartPunct = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
	"–", "-", "—", "-",
	" ", " ",
)

// SmartPunctuation replaces Unicode quotes and dashes pasted from word
// processors with their ASCII equivalents. Pure formatting, no penalty.
func SmartPunctuation() Rule {
	return Rule{
		Name:    "smart-punctuation",
		Penalty: 0,
		Apply: func(code string) (string, []string) {
			out := smartPunct.Replace(code)
			if out == code {
				return code, nil
			}
			return out, []string{"replaced smart quotes/dashes with ASCII"}
		},
	}
}
