// Package reconstruct turns the raw case grid into an ordered sequence of
// clean case records. The repairs here target the defects the PDF to
// spreadsheet conversion of the case report is known to introduce: omitted
// repeated cells, names wrapped over several physical rows, digits leaking
// into the name column and two records merged into one row.
package reconstruct

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/schoolcases/internal/config"
	"github.com/gyeh/schoolcases/internal/grid"
	"github.com/gyeh/schoolcases/internal/model"
	"github.com/gyeh/schoolcases/internal/normalize"
)

// Options configures a reconstruction pass.
type Options struct {
	Columns  config.Columns
	FirstRow int
	Source   string

	// KnownSchool, when set, vetoes a continuation merge that would extend
	// a name already known to the directory into one that is not.
	KnownSchool func(name string) bool
}

// OptionsFromLayout builds Options from a configured sheet layout.
func OptionsFromLayout(l config.Layout) Options {
	return Options{
		Columns:  l.Columns,
		FirstRow: l.FirstRow,
		Source:   l.Source,
	}
}

// Result holds the reconstructed records and the non-fatal problems found.
type Result struct {
	Records       []model.CaseRecord
	Warnings      []error
	RowsRead      int
	RowsSplit     int
	RowsContinued int
	RowsBlank     int
	Spillovers    int

	// FragmentsDropped counts name fragments whose only joins were vetoed.
	FragmentsDropped int
}

// Total returns the sum of all record counts.
func (r *Result) Total() int {
	total := 0
	for _, c := range r.Records {
		total += c.Count
	}
	return total
}

type rebuilder struct {
	g    grid.Grid
	opts Options
	log  zerolog.Logger

	res  *Result
	last *model.CaseRecord

	// claims maps a name-fragment row to whether a neighbouring row merged
	// it (true) or only had the merge vetoed (false).
	claims map[int]bool
}

// Rebuild processes every row from opts.FirstRow to the grid's last row.
// A date or count that cannot be parsed aborts the pass and no records are
// returned.
func Rebuild(g grid.Grid, opts Options, log zerolog.Logger) (*Result, error) {
	if opts.FirstRow < 1 {
		opts.FirstRow = 1
	}
	rb := &rebuilder{g: g, opts: opts, log: log, res: &Result{}, claims: make(map[int]bool)}

	for row := opts.FirstRow; row <= g.LastRow(); row++ {
		if err := rb.processRow(row); err != nil {
			return nil, err
		}
	}
	return rb.res, nil
}

func (rb *rebuilder) cell(row, col int) *string {
	if col < 1 || row < rb.opts.FirstRow || row > rb.g.LastRow() {
		return nil
	}
	return rb.g.Cell(row, col)
}

// hasMeta reports whether a row carries a date reported or a count of its
// own. A named row with neither is a fragment of a wrapped name.
func (rb *rebuilder) hasMeta(row int) bool {
	return rb.cell(row, rb.opts.Columns.DateReported) != nil ||
		rb.cell(row, rb.opts.Columns.Count) != nil
}

// schoolName returns the cleaned name in a row's school cell, or "".
func (rb *rebuilder) schoolName(row int) string {
	v := rb.cell(row, rb.opts.Columns.School)
	if v == nil {
		return ""
	}
	name, _ := normalize.StripSpillover(normalize.CleanName(*v))
	return name
}

// isFragment reports whether a row holds only part of a wrapped name.
func (rb *rebuilder) isFragment(row int) bool {
	return rb.schoolName(row) != "" && !rb.hasMeta(row)
}

// isBlank reports whether every configured cell in the row is empty.
func (rb *rebuilder) isBlank(row int) bool {
	c := rb.opts.Columns
	for _, col := range []int{c.Region, c.School, c.DateReported, c.LastDateOnCampus, c.Marker, c.Count, c.PublicSubmission, c.ReportingPeriod} {
		if rb.cell(row, col) != nil {
			return false
		}
	}
	return true
}

func (rb *rebuilder) processRow(row int) error {
	rb.res.RowsRead++
	cols := rb.opts.Columns

	if rb.isBlank(row) {
		rb.res.RowsBlank++
		return nil
	}

	if rb.isFragment(row) {
		return rb.skipFragment(row)
	}
	countCell := rb.cell(row, cols.Count)

	region := ""
	if v := rb.cell(row, cols.Region); v != nil {
		region = normalize.CleanName(*v)
	} else if rb.last != nil {
		region = rb.last.Region
	}

	school, err := rb.resolveSchool(row)
	if err != nil {
		return err
	}

	dateRaw, date, err := rb.resolveDate(row)
	if err != nil {
		return err
	}

	lastOnCampus := model.UnspecifiedLastDate
	if v := rb.cell(row, cols.LastDateOnCampus); v != nil {
		lastOnCampus = normalize.CleanName(*v)
	}

	var period *string
	if v := rb.cell(row, cols.ReportingPeriod); v != nil {
		p := normalize.CleanName(*v)
		period = &p
	}

	base := model.CaseRecord{
		Region:             region,
		School:             school,
		DateReported:       date,
		DateReportedRaw:    dateRaw,
		LastDateOnCampus:   lastOnCampus,
		Source:             rb.opts.Source,
		IsPublicSubmission: normalize.ParseFlag(rb.cell(row, cols.PublicSubmission)),
		ReportingPeriod:    period,
		Row:                row,
	}

	counts, err := rb.splitCounts(row, countCell)
	if err != nil {
		return err
	}
	for _, n := range counts {
		rec := base
		rec.Count = n
		rb.emit(rec)
	}
	return nil
}

// resolveSchool applies forward-fill, cleanup, spillover truncation and the
// wrapped-name merges to the row's school cell.
func (rb *rebuilder) resolveSchool(row int) (string, error) {
	v := rb.cell(row, rb.opts.Columns.School)
	if v == nil {
		if rb.last != nil {
			return rb.last.School, nil
		}
		return "", nil
	}

	name := normalize.CleanName(*v)
	if stripped, ok := normalize.StripSpillover(name); ok {
		rb.res.Spillovers++
		rb.log.Debug().Int("row", row).Str("raw", name).Str("name", stripped).Msg("stripped column spillover")
		name = stripped
	}
	base := name

	// Name wrapped onto the following physical row. Seen from the fragment
	// row this is the backward join: its text is appended here and the
	// fragment row itself emits nothing.
	if rb.hasMeta(row) && rb.isFragment(row+1) {
		name = rb.merge(row, row+1, base, name)
	}

	// Three-line wrap: the first line is repeated on the next row and the
	// remainder sits on the row after it.
	if base == rb.schoolName(row+1) && rb.isFragment(row+2) {
		name = rb.merge(row, row+2, base, name)
	}

	return name, nil
}

// merge appends the name fragment on fragRow and records the claim.
func (rb *rebuilder) merge(row, fragRow int, base, name string) string {
	fragment := rb.schoolName(fragRow)
	merged := normalize.JoinName(name, fragment)
	if known := rb.opts.KnownSchool; known != nil && known(base) && !known(merged) {
		if _, seen := rb.claims[fragRow]; !seen {
			rb.claims[fragRow] = false
		}
		rb.log.Debug().Int("row", row).Str("name", base).Str("fragment", fragment).Msg("merge vetoed by directory")
		return name
	}
	rb.claims[fragRow] = true
	rb.log.Debug().Int("row", row).Str("name", merged).Msg("merged wrapped school name")
	return merged
}

// skipFragment accounts for a name-fragment row. A fragment no neighbour
// claimed is a row with a name and nothing else, which is a missing count.
func (rb *rebuilder) skipFragment(row int) error {
	merged, claimed := rb.claims[row]
	if !claimed {
		return &CountParseError{Row: row, Err: fmt.Errorf("missing count for %q, which is not part of a wrapped name", rb.schoolName(row))}
	}
	rb.res.RowsContinued++
	if !merged {
		rb.res.FragmentsDropped++
		rb.log.Warn().Int("row", row).Str("fragment", rb.schoolName(row)).Msg("name fragment dropped, every merge was vetoed")
		return nil
	}
	rb.log.Debug().Int("row", row).Str("fragment", rb.schoolName(row)).Msg("continuation row skipped")
	return nil
}

func (rb *rebuilder) resolveDate(row int) (string, time.Time, error) {
	v := rb.cell(row, rb.opts.Columns.DateReported)
	if v == nil {
		if rb.last == nil {
			return "", time.Time{}, &DateParseError{Row: row, Err: fmt.Errorf("no earlier date to carry forward")}
		}
		return rb.last.DateReportedRaw, rb.last.DateReported, nil
	}
	raw := strings.TrimSpace(*v)
	date, err := normalize.ParseDate(raw)
	if err != nil {
		return "", time.Time{}, &DateParseError{Row: row, Value: raw, Err: err}
	}
	return raw, date, nil
}

// splitCounts returns one count per logical record in the row. A row whose
// marker and count cells both hold several lines is two or more records that
// the conversion merged; lines are paired by position.
func (rb *rebuilder) splitCounts(row int, countCell *string) ([]int, error) {
	if countCell == nil {
		return nil, &CountParseError{Row: row, Err: fmt.Errorf("missing count")}
	}

	marker := rb.cell(row, rb.opts.Columns.Marker)
	if marker == nil || !normalize.HasLineBreak(*marker) || !normalize.HasLineBreak(*countCell) {
		n, err := normalize.ParseCount(*countCell)
		if err != nil {
			return nil, &CountParseError{Row: row, Value: *countCell, Err: err}
		}
		return []int{n}, nil
	}

	markers := normalize.SplitLines(*marker)
	lines := normalize.SplitLines(*countCell)
	if len(markers) != len(lines) {
		w := &SplitMismatchWarning{Row: row, Markers: len(markers), Counts: len(lines)}
		rb.res.Warnings = append(rb.res.Warnings, w)
		rb.log.Warn().
			Int("row", row).
			Int("markers", len(markers)).
			Int("counts", len(lines)).
			Msg("mismatch in split")
	}

	n := min(len(markers), len(lines))
	if n == 0 {
		return nil, &CountParseError{Row: row, Value: *countCell, Err: fmt.Errorf("no count lines")}
	}
	counts := make([]int, 0, n)
	for i := 0; i < n; i++ {
		c, err := normalize.ParseCount(lines[i])
		if err != nil {
			return nil, &CountParseError{Row: row, Value: lines[i], Err: err}
		}
		counts = append(counts, c)
	}
	rb.res.RowsSplit++
	return counts, nil
}

func (rb *rebuilder) emit(rec model.CaseRecord) {
	rb.res.Records = append(rb.res.Records, rec)
	rb.last = &rec
}
