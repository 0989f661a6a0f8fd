package grid

import (
	"encoding/csv"
	"os"
)

// OpenCSV reads a CSV export of the case sheet. Rows may have differing
// numbers of fields.
func OpenCSV(path string) (Rows, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return Rows(records), nil
}
