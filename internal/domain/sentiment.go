package domain

import (
	"encoding/json"
	"math"
)

type Sentiment string

const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
)

// Classify maps a rating to its sentiment: above 4 is positive, below 2 is
// negative, anything else (including NaN) is neutral.
func Classify(rating float64) Sentiment {
	switch {
	case rating > 4.0:
		return Positive
	case rating < 2.0:
		return Negative
	default:
		return Neutral
	}
}

// SentimentSummary holds the sentiment counters of one group (an app or a language).
type SentimentSummary struct {
	Key      string `json:"key"`
	Positive int    `json:"positive"`
	Neutral  int    `json:"neutral"`
	Negative int    `json:"negative"`
}

func (s SentimentSummary) Total() int { return s.Positive + s.Neutral + s.Negative }

// SummaryStatistics describes the most reviewed app of a dataset.
type SummaryStatistics struct {
	MostReviewedApp string  `json:"mostReviewedApp"`
	MostReviews     int     `json:"mostReviews"`
	MostUsedDevice  string  `json:"mostUsedDevice"`
	MostDevices     int     `json:"mostDevices"`
	AvgRating       float64 `json:"avgRating"`
}

type summaryStatisticsJSON struct {
	MostReviewedApp string   `json:"mostReviewedApp"`
	MostReviews     int      `json:"mostReviews"`
	MostUsedDevice  string   `json:"mostUsedDevice"`
	MostDevices     int      `json:"mostDevices"`
	AvgRating       *float64 `json:"avgRating"`
}

// MarshalJSON writes a NaN average as null; encoding/json rejects NaN.
func (s SummaryStatistics) MarshalJSON() ([]byte, error) {
	out := summaryStatisticsJSON{
		MostReviewedApp: s.MostReviewedApp,
		MostReviews:     s.MostReviews,
		MostUsedDevice:  s.MostUsedDevice,
		MostDevices:     s.MostDevices,
	}
	if !math.IsNaN(s.AvgRating) && !math.IsInf(s.AvgRating, 0) {
		avg := s.AvgRating
		out.AvgRating = &avg
	}
	return json.Marshal(out)
}

func (s *SummaryStatistics) UnmarshalJSON(b []byte) error {
	var in summaryStatisticsJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*s = SummaryStatistics{
		MostReviewedApp: in.MostReviewedApp,
		MostReviews:     in.MostReviews,
		MostUsedDevice:  in.MostUsedDevice,
		MostDevices:     in.MostDevices,
		AvgRating:       math.NaN(),
	}
	if in.AvgRating != nil {
		s.AvgRating = *in.AvgRating
	}
	return nil
}
