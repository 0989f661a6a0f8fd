package parquetread

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/schoolcases/internal/model"
)

// RequiredColumns are the columns every cases file must carry.
var RequiredColumns = []string{"complex_area", "school", "date_reported", "count"}

// ValidateSchema checks that the schema contains every required column.
func ValidateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !columns[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Totals is the row count and case sum of a cases file.
type Totals struct {
	Rows  int64
	Cases int64
}

const batchSize = 1024

// Scan validates the schema and streams every row, summing the counts.
func Scan(r *Reader) (Totals, error) {
	if err := ValidateSchema(r.Schema()); err != nil {
		return Totals{}, err
	}

	var t Totals
	batch := make([]model.CaseParquetRow, batchSize)
	for {
		n, err := r.Read(batch)
		for _, row := range batch[:n] {
			t.Rows++
			t.Cases += row.Count
		}
		if errors.Is(err, io.EOF) {
			return t, nil
		}
		if err != nil {
			return t, err
		}
	}
}

// Verify checks a rendered cases file against the totals it must hold.
func Verify(data []byte, wantRows, wantCases int) error {
	r, err := OpenBytes(data)
	if err != nil {
		return err
	}
	defer r.Close()

	got, err := Scan(r)
	if err != nil {
		return err
	}
	if got.Rows != int64(wantRows) || got.Cases != int64(wantCases) {
		return fmt.Errorf("cases file holds %d rows and %d cases, want %d and %d",
			got.Rows, got.Cases, wantRows, wantCases)
	}
	return nil
}

// Inspect scans a cases file on disk. The streamed row count must match the
// count recorded in the file footer.
func Inspect(path string) (Totals, error) {
	r, err := Open(path)
	if err != nil {
		return Totals{}, err
	}
	defer r.Close()

	got, err := Scan(r)
	if err != nil {
		return got, fmt.Errorf("scan %s: %w", path, err)
	}
	if want := r.NumRows(); got.Rows != want {
		return got, fmt.Errorf("%s: footer declares %d rows, read %d", path, want, got.Rows)
	}
	return got, nil
}
