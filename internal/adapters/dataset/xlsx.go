package dataset

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"app_reviews/internal/domain"
)

// ParseXLSX reads the first sheet of a workbook the same way ParseCSV reads
// a file: header row first, empty rows skipped.
func ParseXLSX(r io.Reader) ([]domain.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(cells) == 0 {
		return nil, nil
	}

	header := cells[0]
	var rows []domain.RawRecord
	for _, c := range cells[1:] {
		if blank(c) {
			continue
		}
		rows = append(rows, keyed(header, c))
	}
	return rows, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}
