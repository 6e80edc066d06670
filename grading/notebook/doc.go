/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package notebook parses Jupyter notebooks (nbformat 4.x) into an ordered
// cell model and extracts the code and narrative views the grading pipeline
// consumes.
//
// A Document is never mutated in place: normalization and execution each
// derive a new Document via Derive, preserving cell order and count. Error
// outputs are first-class cell outputs and survive parsing unmodified so the
// validator and comparator can observe them.
package notebook
