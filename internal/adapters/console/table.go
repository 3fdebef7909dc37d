// Package console prints analysis results as aligned plain-text tables.
package console

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"app_reviews/internal/domain"
)

// table pads cells by display width so wide runes (CJK, emoji) line up.
type table struct {
	header []string
	rows   [][]string
	right  []bool // right-align column i
}

func (t table) write(w io.Writer) error {
	widths := make([]int, len(t.header))
	for _, row := range append([][]string{t.header}, t.rows...) {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if n := runewidth.StringWidth(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	var sb strings.Builder
	line := func(cells []string) {
		for i, wd := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			pad := strings.Repeat(" ", wd-runewidth.StringWidth(cell))
			if i < len(t.right) && t.right[i] {
				sb.WriteString(pad + cell)
			} else if i == len(widths)-1 {
				sb.WriteString(cell)
			} else {
				sb.WriteString(cell + pad)
			}
		}
		sb.WriteString("\n")
	}

	line(t.header)
	rule := make([]string, len(widths))
	for i, wd := range widths {
		rule[i] = strings.Repeat("-", wd)
	}
	line(rule)
	for _, r := range t.rows {
		line(r)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// RenderSentiment writes one row per group in the order given.
func RenderSentiment(w io.Writer, title string, groups []domain.SentimentSummary) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", title); err != nil {
		return err
	}
	t := table{
		header: []string{"key", "positive", "neutral", "negative", "total"},
		right:  []bool{false, true, true, true, true},
	}
	for _, g := range groups {
		t.rows = append(t.rows, []string{
			g.Key,
			strconv.Itoa(g.Positive),
			strconv.Itoa(g.Neutral),
			strconv.Itoa(g.Negative),
			strconv.Itoa(g.Total()),
		})
	}
	return t.write(w)
}

func RenderSummary(w io.Writer, s domain.SummaryStatistics) error {
	if _, err := io.WriteString(w, "Summary Statistics\n\n"); err != nil {
		return err
	}
	t := table{
		header: []string{"statistic", "value"},
		rows: [][]string{
			{"most reviewed app", s.MostReviewedApp},
			{"reviews", strconv.Itoa(s.MostReviews)},
			{"most used device", s.MostUsedDevice},
			{"device reviews", strconv.Itoa(s.MostDevices)},
			{"average rating", formatAvg(s.AvgRating)},
		},
	}
	return t.write(w)
}

// RenderStats reports what normalization did to the raw rows.
func RenderStats(w io.Writer, st domain.NormalizeStats) error {
	if _, err := io.WriteString(w, "Rows\n\n"); err != nil {
		return err
	}
	t := table{
		header: []string{"outcome", "rows"},
		right:  []bool{false, true},
		rows: [][]string{
			{"read", strconv.Itoa(st.Read)},
			{"kept", strconv.Itoa(st.Kept)},
			{"dropped (missing field)", strconv.Itoa(st.DroppedMissing)},
			{"dropped (malformed)", strconv.Itoa(st.DroppedMalformed)},
		},
	}
	return t.write(w)
}

func formatAvg(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
