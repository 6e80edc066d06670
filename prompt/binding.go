/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package prompt

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// binding is a value waiting to be substituted into a template.
type binding interface {
	value() (string, error)
}

type unbound struct {
	name string
}

func (u unbound) value() (string, error) {
	return "", fmt.Errorf("unbound placeholder: %s", u.name)
}

type text string

func (t text) value() (string, error) {
	return string(t), nil
}

type jsonValue struct {
	data any
}

func (j jsonValue) value() (string, error) {
	b, err := json.MarshalIndent(j.data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON binding: %w", err)
	}
	return string(b), nil
}

type yamlValue struct {
	data any
}

func (y yamlValue) value() (string, error) {
	b, err := yaml.Marshal(y.data)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML binding: %w", err)
	}
	return string(b), nil
}
