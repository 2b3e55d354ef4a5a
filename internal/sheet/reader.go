// Package sheet turns workbook bytes into ordered header/value rows.
package sheet

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"sheetpos/pos/internal/domain"

	"github.com/360EntSecGroup-Skylar/excelize"
	log "github.com/sirupsen/logrus"
)

var allowedExtensions = []string{".xlsx", ".xls"}

// ValidateFileName rejects uploads that are not spreadsheet files.
func ValidateFileName(name string) error {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return domain.NewError(domain.KindInvalidSource, "Please select an Excel file (.xlsx or .xls), got %q", name)
}

// ReadWorkbook reads the first sheet. Rows are keyed by the first row's
// headers; when that yields nothing the first non-blank row is used instead.
func ReadWorkbook(data []byte) (rows []Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = &domain.Error{
				Kind:    domain.KindUnreadableWorkbook,
				Message: "Could not read the spreadsheet",
				Err:     fmt.Errorf("%v", r),
			}
		}
	}()

	if len(data) == 0 {
		return nil, domain.NewError(domain.KindUnreadableWorkbook, "Empty response")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindUnreadableWorkbook, Message: "Could not read the spreadsheet", Err: err}
	}

	name := firstSheet(f)
	if name == "" {
		return nil, domain.NewError(domain.KindEmptyCatalog, "Excel file contains no sheets")
	}
	log.Debugf("📄 Using sheet: %s", name)

	raw := f.GetRows(name)

	rows = keyedRows(raw)
	if len(rows) == 0 {
		log.Debugf("No data with header detection, trying positional headers...")
		rows = positionalRows(raw)
	}

	log.Debugf("Parsed %d data rows", len(rows))
	return rows, nil
}

func firstSheet(f *excelize.File) string {
	sheets := f.GetSheetMap()
	if len(sheets) == 0 {
		return ""
	}
	indexes := make([]int, 0, len(sheets))
	for idx := range sheets {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	return sheets[indexes[0]]
}

func keyedRows(raw [][]string) []Row {
	if len(raw) < 2 {
		return nil
	}
	headers := uniqueHeaders(raw[0], false)
	return buildRows(headers, raw[1:])
}

func positionalRows(raw [][]string) []Row {
	for i, cells := range raw {
		if isBlank(cells) {
			continue
		}
		headers := uniqueHeaders(cells, true)
		return buildRows(headers, raw[i+1:])
	}
	return nil
}

// uniqueHeaders trims header text and suffixes duplicates with _1, _2...
// Blank headers are dropped unless named positionally ("Column 3").
func uniqueHeaders(cells []string, nameBlank bool) []string {
	seen := make(map[string]int, len(cells))
	headers := make([]string, len(cells))
	for i, cell := range cells {
		header := strings.TrimSpace(cell)
		if header == "" {
			if !nameBlank {
				continue
			}
			header = fmt.Sprintf("Column %d", i+1)
		}
		if n, dup := seen[header]; dup {
			seen[header] = n + 1
			header = fmt.Sprintf("%s_%d", header, n+1)
		} else {
			seen[header] = 0
		}
		headers[i] = header
	}
	return headers
}

func buildRows(headers []string, data [][]string) []Row {
	rows := make([]Row, 0, len(data))
	for _, cells := range data {
		row := make(Row, 0, len(headers))
		filled := false
		for i, header := range headers {
			if header == "" {
				continue
			}
			var value string
			if i < len(cells) {
				value = cells[i]
			}
			if strings.TrimSpace(value) != "" {
				filled = true
			}
			row = append(row, Cell{Header: header, Value: value})
		}
		if filled {
			rows = append(rows, row)
		}
	}
	return rows
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
