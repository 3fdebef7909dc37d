package domain

import "context"

// RowSource yields the raw rows of a dataset, blank lines already skipped.
type RowSource interface {
	Name() string
	Rows(ctx context.Context) ([]RawRecord, error)
}

type ReviewRepository interface {
	// Write path
	SaveRun(ctx context.Context, rep Report, reviews []Review) error

	// Read paths
	GetReport(ctx context.Context, id string) (Report, error)
	LatestReport(ctx context.Context) (Report, error)
	ListReviews(ctx context.Context, q ReviewQuery) ([]Review, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ReviewQuery filters stored reviews. An empty ReportID means the latest run.
type ReviewQuery struct {
	ReportID string
	App      string
	Lang     string
	Limit    int
}
