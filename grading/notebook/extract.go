/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package notebook

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MalformedDocumentError reports a notebook that cannot be parsed as valid
// nbformat JSON. It is fatal for the submission it describes: the caller
// reports it rather than retrying.
type MalformedDocumentError struct {
	Reason string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed notebook: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed notebook: %s", e.Reason)
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// Parse reads nbformat 4.x JSON into a Document, preserving cell order.
// No cell is dropped: raw cells are carried as narrative so counts stay
// consistent end-to-end.
func Parse(data []byte) (*Document, error) {
	var raw rawNotebook
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedDocumentError{Reason: "invalid JSON", Err: err}
	}
	if raw.NBFormat != 0 && raw.NBFormat < 4 {
		return nil, &MalformedDocumentError{Reason: fmt.Sprintf("unsupported nbformat %d", raw.NBFormat)}
	}
	if raw.Cells == nil {
		return nil, &MalformedDocumentError{Reason: "no cells array"}
	}

	doc := &Document{raw: raw}
	for i, rc := range raw.Cells {
		cell := Cell{
			Index:          i,
			Source:         rc.Source.String(),
			ExecutionCount: rc.ExecutionCount,
		}
		switch rc.CellType {
		case "code":
			cell.Kind = Code
			for _, ro := range rc.Outputs {
				out, err := parseOutput(ro)
				if err != nil {
					return nil, &MalformedDocumentError{Reason: fmt.Sprintf("cell %d", i), Err: err}
				}
				cell.Outputs = append(cell.Outputs, out)
			}
		case "markdown", "raw":
			cell.Kind = Narrative
		default:
			return nil, &MalformedDocumentError{Reason: fmt.Sprintf("cell %d has unknown type %q", i, rc.CellType)}
		}
		doc.cells = append(doc.cells, cell)
	}
	return doc, nil
}

func parseOutput(ro rawOutput) (Output, error) {
	switch ro.OutputType {
	case "stream":
		return Output{Kind: Stream, Text: ro.Text.String()}, nil
	case "execute_result", "display_data":
		kind := Result
		if ro.OutputType == "display_data" {
			kind = Display
		}
		return Output{Kind: kind, Text: ro.Data["text/plain"].String()}, nil
	case "error":
		return Output{
			Kind:   Error,
			Text:   strings.Join(ro.Traceback, "\n"),
			Ename:  ro.Ename,
			Evalue: ro.Evalue,
		}, nil
	default:
		return Output{}, fmt.Errorf("unknown output type %q", ro.OutputType)
	}
}

// Extraction is the per-document view the rest of the pipeline consumes.
type Extraction struct {
	// CodeText is all code cell sources concatenated in document order.
	CodeText string

	// NarrativeText is all narrative cell sources concatenated in order.
	NarrativeText string

	// CodeCells maps each chunk of CodeText back to its originating cell,
	// in order, for cell-level output alignment.
	CodeCells []Cell
}

// Extract produces the code and narrative views of a document. The returned
// CodeCells slice preserves the original cell indices so captured outputs can
// be aligned cell-by-cell against a reference solution.
func Extract(doc *Document) Extraction {
	var ext Extraction
	var code, prose []string
	for _, c := range doc.Cells() {
		switch c.Kind {
		case Code:
			code = append(code, c.Source)
			ext.CodeCells = append(ext.CodeCells, c)
		case Narrative:
			prose = append(prose, c.Source)
		}
	}
	ext.CodeText = strings.Join(code, "\n\n")
	ext.NarrativeText = strings.Join(prose, "\n\n")
	return ext
}
