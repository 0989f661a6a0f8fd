package reconstruct

import "fmt"

// DateParseError is returned for a present but unparseable date cell. It
// aborts the run.
type DateParseError struct {
	Row   int
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: date reported %q: %s", e.Row, e.Value, e.Err)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// CountParseError is returned for a missing or non-numeric case count. It
// aborts the run.
type CountParseError struct {
	Row   int
	Value string
	Err   error
}

func (e *CountParseError) Error() string {
	return fmt.Sprintf("row %d: count %q: %s", e.Row, e.Value, e.Err)
}

func (e *CountParseError) Unwrap() error {
	return e.Err
}

// SplitMismatchWarning reports a merged row whose marker and count cells
// split into different numbers of lines. Records are paired up to the
// shorter of the two.
type SplitMismatchWarning struct {
	Row     int
	Markers int
	Counts  int
}

func (w *SplitMismatchWarning) Error() string {
	return fmt.Sprintf("row %d: split mismatch: %d marker lines, %d count lines", w.Row, w.Markers, w.Counts)
}
