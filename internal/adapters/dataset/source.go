package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"app_reviews/internal/domain"
)

// Fetcher downloads a URL. remote.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FileSource reads a local .csv or .xlsx file.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return filepath.Base(s.Path) }

func (s FileSource) Rows(ctx context.Context) ([]domain.RawRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseByExt(filepath.Ext(s.Path), f)
}

// URLSource downloads a .csv or .xlsx dataset. Anything else is read as CSV.
type URLSource struct {
	URL     string
	Fetcher Fetcher
}

func (s URLSource) Name() string { return s.URL }

func (s URLSource) Rows(ctx context.Context) ([]domain.RawRecord, error) {
	if s.Fetcher == nil {
		return nil, fmt.Errorf("no fetcher for %s", s.URL)
	}
	b, err := s.Fetcher.Fetch(ctx, s.URL)
	if err != nil {
		return nil, err
	}
	ext := ""
	if u, err := url.Parse(s.URL); err == nil {
		ext = path.Ext(u.Path)
	}
	return parseByExt(ext, bytes.NewReader(b))
}

func parseByExt(ext string, r io.Reader) ([]domain.RawRecord, error) {
	if strings.EqualFold(ext, ".xlsx") {
		return ParseXLSX(r)
	}
	return ParseCSV(r)
}
