package dataset_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"app_reviews/internal/adapters/dataset"
	"app_reviews/internal/app"
	"app_reviews/internal/domain"
)

const sampleCSV = "\xEF\xBB\xBFreview_id,app_name,rating\n" +
	"1,Zoom,4.5\n" +
	"\n" +
	"2,\"Slack, Inc\",1\n" +
	"3,Teams\n"

func TestParseCSV(t *testing.T) {
	rows, err := dataset.ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []domain.RawRecord{
		{"review_id": "1", "app_name": "Zoom", "rating": "4.5"},
		{"review_id": "2", "app_name": "Slack, Inc", "rating": "1"},
		{"review_id": "3", "app_name": "Teams"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows:\n got %v\nwant %v", rows, want)
	}
	if _, ok := rows[2]["rating"]; ok {
		t.Fatalf("short row should leave rating absent")
	}
}

func TestParseCSV_HeaderOnlyAndEmpty(t *testing.T) {
	for _, in := range []string{"", "review_id,app_name\n"} {
		rows, err := dataset.ParseCSV(strings.NewReader(in))
		if err != nil || len(rows) != 0 {
			t.Fatalf("%q: rows=%v err=%v", in, rows, err)
		}
	}
}

func workbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		vals := make([]any, len(r))
		for j := range r {
			vals[j] = r[j]
		}
		if err := f.SetSheetRow("Sheet1", cell, &vals); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestParseXLSX(t *testing.T) {
	b := workbook(t, [][]string{
		{"review_id", "app_name", "rating"},
		{"1", "Zoom", "4.5"},
		{},
		{"2", "Slack"},
	})
	rows, err := dataset.ParseXLSX(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []domain.RawRecord{
		{"review_id": "1", "app_name": "Zoom", "rating": "4.5"},
		{"review_id": "2", "app_name": "Slack"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows:\n got %v\nwant %v", rows, want)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "reviews.csv")
	if err := os.WriteFile(csvPath, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	xlsxPath := filepath.Join(dir, "reviews.XLSX")
	if err := os.WriteFile(xlsxPath, workbook(t, [][]string{{"app_name"}, {"Zoom"}}), 0o644); err != nil {
		t.Fatal(err)
	}

	src := dataset.FileSource{Path: csvPath}
	if src.Name() != "reviews.csv" {
		t.Fatalf("name = %s", src.Name())
	}
	rows, err := src.Rows(context.Background())
	if err != nil || len(rows) != 3 {
		t.Fatalf("csv rows=%d err=%v", len(rows), err)
	}

	rows, err = dataset.FileSource{Path: xlsxPath}.Rows(context.Background())
	if err != nil || len(rows) != 1 || rows[0]["app_name"] != "Zoom" {
		t.Fatalf("xlsx rows=%v err=%v", rows, err)
	}

	if _, err := (dataset.FileSource{Path: filepath.Join(dir, "missing.csv")}).Rows(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want not-exist error, got %v", err)
	}
}

type stubFetcher struct {
	body []byte
	err  error
	got  string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.got = url
	return f.body, f.err
}

func TestURLSource(t *testing.T) {
	f := &stubFetcher{body: []byte(sampleCSV)}
	src := dataset.URLSource{URL: "https://example.test/data/reviews.csv?v=2", Fetcher: f}

	rows, err := src.Rows(context.Background())
	if err != nil || len(rows) != 3 {
		t.Fatalf("rows=%d err=%v", len(rows), err)
	}
	if f.got != src.URL {
		t.Fatalf("fetched %s", f.got)
	}

	boom := errors.New("boom")
	if _, err := (dataset.URLSource{URL: src.URL, Fetcher: &stubFetcher{err: boom}}).Rows(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("want fetch error, got %v", err)
	}
}

func TestWriteCSV_Renormalizes(t *testing.T) {
	in := "review_id,app_name,app_category,review_text,review_language,rating,review_date,verified_purchase,device_type,num_helpful_votes,app_version,user_id,user_age,user_country,user_gender\n" +
		"1,Zoom,Business,\"Good, fast\",en,4.5,2024-03-15,True,iOS,3,5.1,10,29,Kenya,Male\n" +
		"2,Slack,Business,meh,de,x,not a date,False,Android,zz,2.0,11,40,Germany,\n"

	raw, err := dataset.ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	first := app.NormalizeRecords(raw)
	if len(first) != 2 {
		t.Fatalf("kept %d, want 2", len(first))
	}

	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf, first); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.HasPrefix(buf.String(), strings.Join(domain.Header, ",")+"\n") {
		t.Fatalf("unexpected header: %q", buf.String())
	}

	raw2, err := dataset.ParseCSV(&buf)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	second := app.NormalizeRecords(raw2)
	if len(second) != 2 {
		t.Fatalf("kept %d after export, want 2", len(second))
	}

	a, b := first[0], second[0]
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("complete review changed:\n%+v\n%+v", a, b)
	}
	// sentinels survive the trip as sentinels
	if second[1].NumHelpfulVotes != nil || second[1].HasValidDate() || second[1].User.UserGender != nil {
		t.Fatalf("sentinels not preserved: %+v", second[1])
	}
}
