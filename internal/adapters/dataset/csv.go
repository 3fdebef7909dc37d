// Package dataset reads review datasets into header-keyed rows and writes
// cleaned reviews back out.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"app_reviews/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a header row followed by data rows. Blank lines are skipped.
// A row shorter than the header leaves the trailing keys absent; extra cells
// are ignored.
func ParseCSV(r io.Reader) ([]domain.RawRecord, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var rows []domain.RawRecord
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, keyed(header, rec))
	}
	return rows, nil
}

func keyed(header, cells []string) domain.RawRecord {
	row := make(domain.RawRecord, len(header))
	for i, h := range header {
		if i < len(cells) {
			row[h] = cells[i]
		}
	}
	return row
}
