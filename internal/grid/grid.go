// Package grid exposes a decoded spreadsheet as a 2D grid of nullable cells
// addressed by 1-based (row, column).
package grid

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Grid is an indexing facade over decoded tabular input. Cell returns nil for
// an empty or out-of-range cell.
type Grid interface {
	Cell(row, col int) *string
	LastRow() int
}

// DecodeError is returned when the source cannot be opened or read.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Open decodes the file at path, choosing the decoder by extension. For
// workbooks, sheet selects the worksheet by name; empty means the first one.
func Open(path, sheet string) (Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err := OpenXLSX(path, sheet)
		if err != nil {
			return nil, err
		}
		return rows, nil
	case ".csv":
		rows, err := OpenCSV(path)
		if err != nil {
			return nil, err
		}
		return rows, nil
	default:
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("unsupported file type %q", filepath.Ext(path))}
	}
}

// Rows is an in-memory Grid backed by a slice of rows.
type Rows [][]string

// Cell implements Grid.
func (g Rows) Cell(row, col int) *string {
	if row < 1 || row > len(g) {
		return nil
	}
	r := g[row-1]
	if col < 1 || col > len(r) {
		return nil
	}
	return nullable(r[col-1])
}

// LastRow implements Grid.
func (g Rows) LastRow() int {
	return len(g)
}

// nullable maps blank text to nil.
func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
