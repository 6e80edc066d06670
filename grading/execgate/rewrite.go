/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package execgate

import (
	"path"
	"regexp"
	"strings"

	"chainguard.dev/gradeflow/grading/notebook"
)

// quotedPath matches quoted absolute or home-relative paths. Data loads are
// syntactically stereotyped (a quoted literal inside a read call), so pattern
// substitution is sufficient here; this is not an AST rewrite.
var quotedPath = regexp.MustCompile(`(["'])(~?/[^"']+|[A-Za-z]:\\[^"']+)(["'])`)

// setwdCall matches student-authored working-directory changes, which would
// escape the isolated directory.
var setwdCall = regexp.MustCompile(`(?m)^(\s*)(setwd\s*\([^)]*\))`)

// rewriteForExecution derives a document whose code cells reference data
// files by bare name and cannot change the working directory. The input
// document is not modified.
func rewriteForExecution(doc *notebook.Document) (*notebook.Document, int, int) {
	sources := map[int]string{}
	var rewrites, disabled int

	for _, c := range doc.Cells() {
		if c.Kind != notebook.Code {
			continue
		}
		src := c.Source

		src = quotedPath.ReplaceAllStringFunc(src, func(m string) string {
			sub := quotedPath.FindStringSubmatch(m)
			p := sub[2]
			base := path.Base(strings.ReplaceAll(p, `\`, "/"))
			rewrites++
			return sub[1] + base + sub[3]
		})

		src = setwdCall.ReplaceAllStringFunc(src, func(m string) string {
			sub := setwdCall.FindStringSubmatch(m)
			disabled++
			return sub[1] + "# " + sub[2]
		})

		if src != c.Source {
			sources[c.Index] = src
		}
	}

	if len(sources) == 0 {
		return doc, 0, 0
	}
	return doc.Derive(sources), rewrites, disabled
}
