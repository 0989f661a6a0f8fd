package refdata

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyeh/schoolcases/internal/model"
)

const schoolsCSV = `sch_name,x,y,sch_code,enrollment,teachers,adminfte
Kailua High,-157.74,21.40,210,805,52,4.5
Lincoln High,-157.85,21.31,,1200,,
Waipahu Intermediate,,,ab12,,,
`

func TestReadCSV(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader(schoolsCSV))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	k := entries[0]
	assert.Equal(t, "Kailua High", k.Name)
	require.NotNil(t, k.Longitude)
	assert.InDelta(t, -157.74, *k.Longitude, 1e-9)
	require.NotNil(t, k.Latitude)
	assert.InDelta(t, 21.40, *k.Latitude, 1e-9)
	require.NotNil(t, k.Identifier)
	assert.Equal(t, "210", *k.Identifier)
	require.NotNil(t, k.Enrollment)
	assert.Equal(t, 805, *k.Enrollment)
	require.NotNil(t, k.TeacherCount)
	assert.Equal(t, 52, *k.TeacherCount)
	require.NotNil(t, k.AdminFTE)
	assert.InDelta(t, 4.5, *k.AdminFTE, 1e-9)

	l := entries[1]
	assert.Nil(t, l.Identifier)
	assert.Nil(t, l.TeacherCount)
	assert.Nil(t, l.AdminFTE)

	w := entries[2]
	assert.Nil(t, w.Latitude)
	require.NotNil(t, w.Identifier)
	assert.Equal(t, "AB12", *w.Identifier)
}

func TestReadCSV_HeaderAliases(t *testing.T) {
	data := "\ufeffName ,Longitude,Latitude\nKailua High,-157.74,21.40\n"
	entries, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Kailua High", entries[0].Name)
	assert.NotNil(t, entries[0].Latitude)
	assert.Nil(t, entries[0].Enrollment)
}

func TestReadCSV_MissingNameColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("x,y\n1,2\n"))
	assert.Error(t, err)
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schoolslist.csv")
	require.NoError(t, os.WriteFile(path, []byte(schoolsCSV), 0o644))

	dir, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 3, dir.Len())
	assert.Equal(t, []string{"Kailua High", "Lincoln High", "Waipahu Intermediate"}, dir.Names())
	assert.True(t, dir.Has("Kailua High"))
	assert.False(t, dir.Has("kailua high"), "lookup is an exact match")

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestNewDirectory_FirstEntryWins(t *testing.T) {
	code1, code2 := "1", "2"
	dir := NewDirectory([]model.SchoolDirectoryEntry{
		{Name: "Kailua High", Identifier: &code1},
		{Name: "Kailua High", Identifier: &code2},
		{Name: ""},
	})
	assert.Equal(t, 1, dir.Len())
	e, ok := dir.Lookup("Kailua High")
	require.True(t, ok)
	assert.Equal(t, "1", *e.Identifier)
}

func TestJoin(t *testing.T) {
	entries, err := ReadCSV(strings.NewReader(schoolsCSV))
	require.NoError(t, err)
	dir := NewDirectory(entries)

	summaries := []model.SchoolSummary{
		{Name: "Kailua High", CumulativeTotal: 3},
		{Name: "Mystery Academy", CumulativeTotal: 1},
	}
	warnings := Join(summaries, dir, zerolog.Nop())

	require.Len(t, warnings, 1)
	var w *UnmatchedSchoolWarning
	require.True(t, errors.As(warnings[0], &w))
	assert.Equal(t, "Mystery Academy", w.School)

	assert.True(t, summaries[0].Joined())
	assert.Equal(t, 805, *summaries[0].Enrollment)

	// Absent, not zero.
	assert.False(t, summaries[1].Joined())
	assert.Nil(t, summaries[1].Enrollment)
	assert.Nil(t, summaries[1].Latitude)
}
