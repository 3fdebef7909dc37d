package app

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"app_reviews/internal/domain"
)

/********** loose parsers **********/

var (
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
	floatPrefix = regexp.MustCompile(`^[+-]?(?:Infinity|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`)
)

// dateLayouts are tried in order. Zone-less values are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/1/2",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	time.RFC1123Z,
	time.RFC1123,
}

// parseIntLoose reads the leading base-10 integer of s ("42abc" -> 42).
// It returns nil when s has no leading digits.
func parseIntLoose(s string) *int64 {
	m := intPrefix.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if m == "" {
		return nil
	}
	n, err := strconv.ParseInt(m, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil
	}
	// on ErrRange n is clamped to the int64 bounds
	return &n
}

// parseFloatLoose reads the leading decimal number of s ("4.5 stars" -> 4.5).
// It returns NaN when s has no numeric prefix.
func parseFloatLoose(s string) float64 {
	m := floatPrefix.FindString(strings.TrimLeftFunc(s, unicode.IsSpace))
	if m == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// parseDateLoose returns the zero time when no layout matches.
func parseDateLoose(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

/********** normalizer **********/

// Normalizer turns raw rows into typed reviews.
type Normalizer struct {
	policy domain.CoercionPolicy
}

func NewNormalizer(policy domain.CoercionPolicy) *Normalizer {
	if policy != domain.PolicyStrict {
		policy = domain.PolicyLenient
	}
	return &Normalizer{policy: policy}
}

func (n *Normalizer) Policy() domain.CoercionPolicy { return n.policy }

// NormalizeRecords applies the lenient policy.
func NormalizeRecords(rows []domain.RawRecord) []domain.Review {
	out, _ := NewNormalizer(domain.PolicyLenient).Normalize(rows)
	return out
}

// Normalize keeps the order of rows. A row missing any required field is
// dropped; under the strict policy so is a row whose numbers or date do not parse.
func (n *Normalizer) Normalize(rows []domain.RawRecord) ([]domain.Review, domain.NormalizeStats) {
	stats := domain.NormalizeStats{Read: len(rows), Sentinels: map[string]int{}}
	out := make([]domain.Review, 0, len(rows))

	for _, rec := range rows {
		if _, ok := missingField(rec); ok {
			stats.DroppedMissing++
			continue
		}

		rv, bad := coerce(rec)
		for _, f := range bad {
			stats.Sentinels[f]++
		}
		if len(bad) > 0 && n.policy == domain.PolicyStrict {
			stats.DroppedMalformed++
			continue
		}
		out = append(out, rv)
	}

	stats.Kept = len(out)
	return out, stats
}

// missingField returns the first required field that is absent or empty.
func missingField(rec domain.RawRecord) (string, bool) {
	for _, f := range domain.RequiredFields {
		if v, ok := rec[f]; !ok || v == "" {
			return f, true
		}
	}
	return "", false
}

// coerce builds a Review from a complete row and lists the fields that fell
// back to a sentinel value.
func coerce(rec domain.RawRecord) (domain.Review, []string) {
	var bad []string
	intField := func(f string) *int64 {
		v := parseIntLoose(rec[f])
		if v == nil {
			bad = append(bad, f)
		}
		return v
	}

	user := domain.User{
		UserID:      intField(domain.FieldUserID),
		UserAge:     intField(domain.FieldUserAge),
		UserCountry: rec[domain.FieldUserCountry],
	}
	if g := rec[domain.FieldUserGender]; g != "" {
		user.UserGender = &g
	}

	rv := domain.Review{
		ReviewID:         intField(domain.FieldReviewID),
		AppName:          rec[domain.FieldAppName],
		AppCategory:      rec[domain.FieldAppCategory],
		ReviewText:       rec[domain.FieldReviewText],
		ReviewLanguage:   rec[domain.FieldReviewLanguage],
		Rating:           parseFloatLoose(rec[domain.FieldRating]),
		ReviewDate:       parseDateLoose(rec[domain.FieldReviewDate]),
		VerifiedPurchase: rec[domain.FieldVerifiedPurchase] == "True",
		DeviceType:       rec[domain.FieldDeviceType],
		NumHelpfulVotes:  intField(domain.FieldNumHelpfulVotes),
		AppVersion:       rec[domain.FieldAppVersion],
		User:             user,
	}
	if math.IsNaN(rv.Rating) {
		bad = append(bad, domain.FieldRating)
	}
	if !rv.HasValidDate() {
		bad = append(bad, domain.FieldReviewDate)
	}
	return rv, bad
}
