package dataset

import (
	"encoding/csv"
	"io"

	"app_reviews/internal/domain"
)

// WriteCSV writes reviews in their raw form under domain.Header. Reading the
// output back through ParseCSV and the normalizer yields the same reviews.
func WriteCSV(w io.Writer, reviews []domain.Review) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.Header); err != nil {
		return err
	}
	line := make([]string, len(domain.Header))
	for _, rv := range reviews {
		rec := rv.Record()
		for i, h := range domain.Header {
			line[i] = rec[h]
		}
		if err := cw.Write(line); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
