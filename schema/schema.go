/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package schema derives JSON schemas from Go response types so prompts can
// state their response contract precisely instead of describing it in prose.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// reflector is configured for inline, self-contained schemas: no $ref
// indirection, required fields from jsonschema tags.
var reflector = jsonschema.Reflector{
	RequiredFromJSONSchemaTags: true,
	ExpandedStruct:             true,
	AllowAdditionalProperties:  true,
	DoNotReference:             true,
}

// For derives the JSON schema for T.
func For[T any]() *jsonschema.Schema {
	var zero T
	return reflector.Reflect(&zero)
}

// JSONFor renders T's schema as indented JSON, ready for embedding in a
// prompt.
func JSONFor[T any]() (string, error) {
	b, err := json.MarshalIndent(For[T](), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling schema: %w", err)
	}
	return string(b), nil
}
