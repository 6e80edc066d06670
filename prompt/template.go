/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prompt

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"unicode"
)

// literal only accepts untyped string constants, keeping template text and
// binding names under developer control.
type literal string

// Template is a prompt with named placeholders. Templates are immutable:
// every Bind* call returns a new Template.
type Template struct {
	text     string
	bindings map[string]binding
}

// New parses a template literal and registers its placeholders.
func New(text literal) (*Template, error) {
	bindings := make(map[string]binding)
	if err := scan(string(text), func(name string) error {
		if _, ok := bindings[name]; !ok {
			bindings[name] = unbound{name: name}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &Template{text: string(text), bindings: bindings}, nil
}

// Must panics on error. For package-level template variables.
func Must(t *Template, err error) *Template {
	if err != nil {
		panic(err)
	}
	return t
}

// Placeholders returns the set of placeholder names in the template.
func (t *Template) Placeholders() map[string]struct{} {
	names := make(map[string]struct{}, len(t.bindings))
	for name := range t.bindings {
		names[name] = struct{}{}
	}
	return names
}

// Bind binds free-form text, typically untrusted input such as student code.
// The value is substituted verbatim; placeholders inside it are not expanded.
func (t *Template) Bind(name, value string) (*Template, error) {
	return t.with(name, text(value))
}

// BindJSON binds structured data marshaled as indented JSON.
func (t *Template) BindJSON(name string, data any) (*Template, error) {
	return t.with(name, jsonValue{data: data})
}

// BindYAML binds structured data marshaled as YAML.
func (t *Template) BindYAML(name string, data any) (*Template, error) {
	return t.with(name, yamlValue{data: data})
}

func (t *Template) with(name string, b binding) (*Template, error) {
	cur, ok := t.bindings[name]
	if !ok {
		return nil, fmt.Errorf("placeholder %q not found in template", name)
	}
	if _, free := cur.(unbound); !free {
		return nil, fmt.Errorf("placeholder %q already bound", name)
	}
	next := &Template{text: t.text, bindings: maps.Clone(t.bindings)}
	next.bindings[name] = b
	return next, nil
}

// Render produces the final prompt text, failing if any placeholder remains
// unbound or a bound value cannot be marshaled.
func (t *Template) Render() (string, error) {
	values := make(map[string]string, len(t.bindings))
	for name, b := range t.bindings {
		v, err := b.value()
		if err != nil {
			return "", err
		}
		values[name] = v
	}

	var out strings.Builder
	rest := t.text
	for len(rest) > 0 {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:start])
		end := strings.Index(rest[start:], "}}")
		if end == -1 {
			return "", errors.New("unclosed placeholder: missing '}}'")
		}
		end += start + 2
		name := strings.TrimSpace(rest[start+2 : end-2])
		out.WriteString(values[name])
		rest = rest[end:]
	}
	return out.String(), nil
}

// scan walks the template calling visit for each placeholder name,
// validating delimiters and identifiers along the way.
func scan(text string, visit func(name string) error) error {
	for len(text) > 0 {
		start := strings.Index(text, "{{")
		if start == -1 {
			return nil
		}
		end := strings.Index(text[start:], "}}")
		if end == -1 {
			return errors.New("unclosed placeholder: missing '}}'")
		}
		end += start + 2
		name := strings.TrimSpace(text[start+2 : end-2])
		if !validName(name) {
			return fmt.Errorf("invalid placeholder name %q", name)
		}
		if err := visit(name); err != nil {
			return err
		}
		text = text[end:]
	}
	return nil
}

// validName requires a leading letter followed by letters, digits, or
// underscores.
func validName(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsLetter(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
