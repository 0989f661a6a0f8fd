package grid

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// OpenXLSX reads every row of one worksheet into memory.
func OpenXLSX(path, sheet string) (Rows, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &DecodeError{Path: path, Err: fmt.Errorf("workbook has no sheets")}
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	return Rows(rows), nil
}
