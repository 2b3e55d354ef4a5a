package sheet

import (
	"fmt"

	"github.com/360EntSecGroup-Skylar/excelize"
)

const exportSheet = "Sheet1"

// Encode writes rows into a single-sheet .xlsx workbook. Cells may be
// strings, numbers or nil.
func Encode(rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	for i := range rows {
		cells := rows[i]
		f.SetSheetRow(exportSheet, fmt.Sprintf("A%d", i+1), &cells)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
