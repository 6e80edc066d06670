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

// CellKind distinguishes executable code cells from narrative cells.
type CellKind string

const (
	// Code is an executable cell.
	Code CellKind = "code"
	// Narrative is a markdown (or raw) prose cell.
	Narrative CellKind = "narrative"
)

// OutputKind classifies a captured cell output.
type OutputKind string

const (
	// Stream is stdout/stderr text written during execution.
	Stream OutputKind = "stream"
	// Result is the value of the last expression in a cell.
	Result OutputKind = "execute_result"
	// Display is rich display data (tables, plots) rendered by the kernel.
	Display OutputKind = "display_data"
	// Error is a captured execution error. It is a first-class outcome, not
	// an exception: it flows to the validator and comparator unmodified.
	Error OutputKind = "error"
)

// Output is one captured output of a code cell.
type Output struct {
	Kind OutputKind `json:"kind"`

	// Text is the flattened text/plain representation of the output.
	Text string `json:"text"`

	// Ename and Evalue carry the error class and message for Error outputs.
	Ename  string `json:"ename,omitempty"`
	Evalue string `json:"evalue,omitempty"`
}

// IsError reports whether this output records an execution error.
func (o Output) IsError() bool { return o.Kind == Error }

// Cell is one notebook cell with its captured outputs.
type Cell struct {
	// Index is the cell's position in the original document. It is stable
	// across derived documents so extracted code maps back to its cell.
	Index int `json:"index"`

	Kind    CellKind `json:"kind"`
	Source  string   `json:"source"`
	Outputs []Output `json:"outputs,omitempty"`

	// ExecutionCount is the kernel's execution marker, nil if the cell was
	// never run.
	ExecutionCount *int `json:"execution_count,omitempty"`
}

// HasOutput reports whether the cell captured at least one output.
func (c Cell) HasOutput() bool { return len(c.Outputs) > 0 }

// Document is an ordered sequence of cells parsed from one notebook file.
type Document struct {
	cells []Cell
	raw   rawNotebook
}

// Cells returns the cells in document order.
func (d *Document) Cells() []Cell { return d.cells }

// CodeCells returns only the code cells, in document order.
func (d *Document) CodeCells() []Cell {
	var out []Cell
	for _, c := range d.cells {
		if c.Kind == Code {
			out = append(out, c)
		}
	}
	return out
}

// Derive returns a new Document with cell sources replaced per the given
// index map. Cells not named in the map are copied unchanged. The receiver is
// not modified.
func (d *Document) Derive(sources map[int]string) *Document {
	nd := &Document{
		cells: make([]Cell, len(d.cells)),
		raw:   d.raw.clone(),
	}
	copy(nd.cells, d.cells)
	for i := range nd.cells {
		nd.cells[i].Outputs = append([]Output(nil), d.cells[i].Outputs...)
		if src, ok := sources[nd.cells[i].Index]; ok {
			nd.cells[i].Source = src
			nd.raw.Cells[i].setSource(src)
		}
	}
	return nd
}

// Bytes serializes the document back to nbformat JSON, suitable for handing
// to an execution sandbox.
func (d *Document) Bytes() ([]byte, error) {
	data, err := json.MarshalIndent(d.raw, "", " ")
	if err != nil {
		return nil, fmt.Errorf("marshaling notebook: %w", err)
	}
	return data, nil
}

// rawNotebook mirrors the nbformat JSON closely enough to round-trip the
// fields execution cares about; metadata is carried opaquely.
type rawNotebook struct {
	Cells         []rawCell       `json:"cells"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
	NBFormat      int             `json:"nbformat"`
	NBFormatMinor int             `json:"nbformat_minor"`
}

func (n rawNotebook) clone() rawNotebook {
	nn := n
	nn.Cells = make([]rawCell, len(n.Cells))
	copy(nn.Cells, n.Cells)
	return nn
}

type rawCell struct {
	CellType       string          `json:"cell_type"`
	Source         multiline       `json:"source"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Outputs        []rawOutput     `json:"outputs,omitempty"`
	ExecutionCount *int            `json:"execution_count,omitempty"`
}

func (c *rawCell) setSource(src string) {
	c.Source = multiline{src}
}

type rawOutput struct {
	OutputType     string               `json:"output_type"`
	Name           string               `json:"name,omitempty"`
	Text           multiline            `json:"text,omitempty"`
	Data           map[string]multiline `json:"data,omitempty"`
	Ename          string               `json:"ename,omitempty"`
	Evalue         string               `json:"evalue,omitempty"`
	Traceback      []string             `json:"traceback,omitempty"`
	ExecutionCount *int                 `json:"execution_count,omitempty"`
}

// multiline handles the nbformat convention of source/text being either a
// single string or a list of line strings.
type multiline []string

func (m *multiline) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = multiline{s}
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*m = multiline(lines)
	return nil
}

func (m multiline) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(m))
}

func (m multiline) String() string {
	return strings.Join(m, "")
}
