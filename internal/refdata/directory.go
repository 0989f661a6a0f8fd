// Package refdata loads the static school directory and joins it onto
// school summaries by exact name.
package refdata

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/gyeh/schoolcases/internal/model"
)

// UnmatchedSchoolWarning reports a school with no directory entry. The
// summary's directory fields are left absent.
type UnmatchedSchoolWarning struct {
	School string
}

func (w *UnmatchedSchoolWarning) Error() string {
	return fmt.Sprintf("no directory data found for %q", w.School)
}

// Directory is the school directory keyed by exact name.
type Directory struct {
	entries map[string]model.SchoolDirectoryEntry
	names   []string
}

// NewDirectory indexes entries by name. The first entry for a name wins.
func NewDirectory(entries []model.SchoolDirectoryEntry) *Directory {
	d := &Directory{entries: make(map[string]model.SchoolDirectoryEntry, len(entries))}
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		if _, dup := d.entries[e.Name]; dup {
			continue
		}
		d.entries[e.Name] = e
		d.names = append(d.names, e.Name)
	}
	sort.Strings(d.names)
	return d
}

// Lookup returns the entry for name.
func (d *Directory) Lookup(name string) (model.SchoolDirectoryEntry, bool) {
	e, ok := d.entries[name]
	return e, ok
}

// Has reports whether name is in the directory.
func (d *Directory) Has(name string) bool {
	_, ok := d.entries[name]
	return ok
}

// Names returns every directory name in sorted order.
func (d *Directory) Names() []string {
	return append([]string(nil), d.names...)
}

// Len returns the number of schools in the directory.
func (d *Directory) Len() int {
	return len(d.entries)
}

// Join attaches directory fields to each summary in place. Misses are logged
// and returned as warnings; they never fail the join.
func Join(summaries []model.SchoolSummary, dir *Directory, log zerolog.Logger) []error {
	var warnings []error
	for i := range summaries {
		s := &summaries[i]
		e, ok := dir.Lookup(s.Name)
		if !ok {
			warnings = append(warnings, &UnmatchedSchoolWarning{School: s.Name})
			log.Warn().Str("school", s.Name).Msg("no directory data found")
			continue
		}
		s.Latitude = e.Latitude
		s.Longitude = e.Longitude
		s.Identifier = e.Identifier
		s.Enrollment = e.Enrollment
		s.TeacherCount = e.TeacherCount
		s.AdminFTE = e.AdminFTE
	}
	return warnings
}
