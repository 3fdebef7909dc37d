package domain

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrNoReviews = errors.New("no reviews survived normalization")
	ErrNoSource  = errors.New("no dataset source configured")
)

// CoercionPolicy decides what happens to a complete row whose numeric or
// date text does not parse.
type CoercionPolicy string

const (
	// PolicyLenient keeps the row with sentinel values.
	PolicyLenient CoercionPolicy = "lenient"
	// PolicyStrict drops the row.
	PolicyStrict CoercionPolicy = "strict"
)

// NormalizeStats counts what happened to the raw rows of one run.
type NormalizeStats struct {
	Read             int            `json:"read"`
	Kept             int            `json:"kept"`
	DroppedMissing   int            `json:"dropped_missing"`
	DroppedMalformed int            `json:"dropped_malformed"`
	Sentinels        map[string]int `json:"sentinels,omitempty"`
}

// Report is the outcome of one analysis run.
type Report struct {
	ID          string             `json:"id"`
	Source      string             `json:"source"`
	Policy      CoercionPolicy     `json:"policy"`
	GeneratedAt time.Time          `json:"generated_at"`
	Stats       NormalizeStats     `json:"stats"`
	ByApp       []SentimentSummary `json:"sentiment_by_app"`
	ByLanguage  []SentimentSummary `json:"sentiment_by_language"`
	Summary     SummaryStatistics  `json:"summary"`
}
