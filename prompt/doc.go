/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package prompt provides immutable prompt templates with typed placeholder
// bindings.
//
// A template is authored as a compile-time string literal containing
// {{placeholder}} markers. Binding a value returns a new template; the
// original is never modified, so a package-level template can be shared and
// bound per-request. Render fails if any placeholder is still unbound, which
// turns a forgotten binding into an error instead of a prompt with a literal
// "{{student_code}}" in it.
//
// Only developer-authored literals can form a template. Student code and
// other untrusted text enter exclusively through bindings, where they are
// substituted verbatim and cannot introduce new placeholders.
package prompt
