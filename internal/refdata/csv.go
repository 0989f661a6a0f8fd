package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gyeh/schoolcases/internal/model"
	"github.com/gyeh/schoolcases/internal/normalize"
)

// Header aliases accepted for each directory field.
var (
	nameHeaders       = []string{"sch_name", "name", "school"}
	longitudeHeaders  = []string{"x", "long", "longitude", "lon"}
	latitudeHeaders   = []string{"y", "lat", "latitude"}
	codeHeaders       = []string{"sch_code", "id", "code"}
	enrollmentHeaders = []string{"enrollment"}
	teacherHeaders    = []string{"teachers", "teacher_count"}
	adminHeaders      = []string{"adminfte", "admin_fte"}
)

// LoadCSV reads the directory from a CSV file with a header row.
func LoadCSV(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open school directory: %w", err)
	}
	defer f.Close()

	entries, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read school directory %s: %w", path, err)
	}
	return NewDirectory(entries), nil
}

// ReadCSV parses directory rows. Only the name column is required.
func ReadCSV(r io.Reader) ([]model.SchoolDirectoryEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := normalizeHeaders(header)
	nameIdx, ok := findColumn(cols, nameHeaders)
	if !ok {
		return nil, fmt.Errorf("missing school name column (one of %s)", strings.Join(nameHeaders, ", "))
	}

	var entries []model.SchoolDirectoryEntry
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		name := strings.TrimSpace(getValue(record, nameIdx))
		if name == "" {
			continue
		}
		e := model.SchoolDirectoryEntry{Name: name}
		if idx, ok := findColumn(cols, longitudeHeaders); ok {
			e.Longitude = normalize.OptFloat(getValue(record, idx))
		}
		if idx, ok := findColumn(cols, latitudeHeaders); ok {
			e.Latitude = normalize.OptFloat(getValue(record, idx))
		}
		if idx, ok := findColumn(cols, codeHeaders); ok {
			v := getValue(record, idx)
			e.Identifier = normalize.NormalizeCode(&v)
		}
		if idx, ok := findColumn(cols, enrollmentHeaders); ok {
			e.Enrollment = normalize.OptInt(getValue(record, idx))
		}
		if idx, ok := findColumn(cols, teacherHeaders); ok {
			e.TeacherCount = normalize.OptInt(getValue(record, idx))
		}
		if idx, ok := findColumn(cols, adminHeaders); ok {
			e.AdminFTE = normalize.OptFloat(getValue(record, idx))
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func normalizeHeaders(headers []string) map[string]int {
	out := make(map[string]int, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if _, exists := out[key]; !exists {
			out[key] = i
		}
	}
	return out
}

func normalizeHeader(value string) string {
	value = strings.TrimPrefix(value, "\ufeff")
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.Join(strings.Fields(value), "_")
}

func findColumn(headers map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := headers[name]; ok {
			return idx, true
		}
	}
	return 0, false
}

func getValue(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}
