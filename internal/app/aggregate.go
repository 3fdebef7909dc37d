package app

import "app_reviews/internal/domain"

// GroupCounts is the sentiment tally of one group key.
type GroupCounts[K comparable] struct {
	Key      K
	Positive int
	Neutral  int
	Negative int
}

func (g GroupCounts[K]) Total() int { return g.Positive + g.Neutral + g.Negative }

// counterTable keeps one tally per key in first-seen order.
type counterTable[K comparable] struct {
	index map[K]int
	rows  []GroupCounts[K]
}

func newCounterTable[K comparable]() *counterTable[K] {
	return &counterTable[K]{index: make(map[K]int)}
}

// upsert returns the tally for k, creating a zeroed one on first sight.
func (t *counterTable[K]) upsert(k K) *GroupCounts[K] {
	i, ok := t.index[k]
	if !ok {
		i = len(t.rows)
		t.index[k] = i
		t.rows = append(t.rows, GroupCounts[K]{Key: k})
	}
	return &t.rows[i]
}

// Aggregate counts sentiments per key. Groups come out in order of first
// occurrence in reviews; keys with no reviews never appear.
func Aggregate[K comparable](reviews []domain.Review, keyOf func(domain.Review) K) []GroupCounts[K] {
	t := newCounterTable[K]()
	for _, rv := range reviews {
		g := t.upsert(keyOf(rv))
		switch domain.Classify(rv.Rating) {
		case domain.Positive:
			g.Positive++
		case domain.Negative:
			g.Negative++
		default:
			g.Neutral++
		}
	}
	return t.rows
}

func SentimentByApp(reviews []domain.Review) []domain.SentimentSummary {
	return toSummaries(Aggregate(reviews, func(r domain.Review) string { return r.AppName }))
}

func SentimentByLanguage(reviews []domain.Review) []domain.SentimentSummary {
	return toSummaries(Aggregate(reviews, func(r domain.Review) string { return r.ReviewLanguage }))
}

func toSummaries(groups []GroupCounts[string]) []domain.SentimentSummary {
	out := make([]domain.SentimentSummary, len(groups))
	for i, g := range groups {
		out[i] = domain.SentimentSummary{
			Key:      g.Key,
			Positive: g.Positive,
			Neutral:  g.Neutral,
			Negative: g.Negative,
		}
	}
	return out
}
