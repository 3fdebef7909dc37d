package domain

import (
	"math"
	"strconv"
	"time"
)

// RawRecord is one header-keyed row as produced by tabular parsing.
// A missing key is the parser's absent marker.
type RawRecord map[string]string

// Source column names.
const (
	FieldReviewID         = "review_id"
	FieldAppName          = "app_name"
	FieldAppCategory      = "app_category"
	FieldReviewText       = "review_text"
	FieldReviewLanguage   = "review_language"
	FieldRating           = "rating"
	FieldReviewDate       = "review_date"
	FieldVerifiedPurchase = "verified_purchase"
	FieldDeviceType       = "device_type"
	FieldNumHelpfulVotes  = "num_helpful_votes"
	FieldAppVersion       = "app_version"
	FieldUserID           = "user_id"
	FieldUserAge          = "user_age"
	FieldUserCountry      = "user_country"
	FieldUserGender       = "user_gender"
)

// RequiredFields lists every column a row must carry, non-empty, to be kept.
// user_gender is the only column allowed to be missing.
var RequiredFields = []string{
	FieldReviewID,
	FieldAppName,
	FieldAppCategory,
	FieldReviewText,
	FieldReviewLanguage,
	FieldRating,
	FieldReviewDate,
	FieldVerifiedPurchase,
	FieldDeviceType,
	FieldNumHelpfulVotes,
	FieldAppVersion,
	FieldUserID,
	FieldUserAge,
	FieldUserCountry,
}

// Header is the full column order used when writing reviews back out.
var Header = append(append([]string{}, RequiredFields...), FieldUserGender)

// DateLayout is the layout Record uses for review dates.
const DateLayout = time.RFC3339

type User struct {
	UserID      *int64  // nil when the source text was not a number
	UserAge     *int64  // nil when the source text was not a number
	UserCountry string
	UserGender  *string // nil when absent in the source
}

// Review is one cleaned review. Integer fields use nil, Rating uses NaN and
// ReviewDate uses the zero time when the source text could not be parsed.
type Review struct {
	ReviewID         *int64
	AppName          string
	AppCategory      string
	ReviewText       string
	ReviewLanguage   string
	Rating           float64
	ReviewDate       time.Time
	VerifiedPurchase bool
	DeviceType       string
	NumHelpfulVotes  *int64
	AppVersion       string
	User             User
}

// HasValidDate reports whether ReviewDate was parsed from the source.
func (r Review) HasValidDate() bool { return !r.ReviewDate.IsZero() }

// Record renders the review back into its raw tabular form.
// Sentinel values render as "NaN" and "Invalid Date".
func (r Review) Record() RawRecord {
	rec := RawRecord{
		FieldReviewID:         formatInt(r.ReviewID),
		FieldAppName:          r.AppName,
		FieldAppCategory:      r.AppCategory,
		FieldReviewText:       r.ReviewText,
		FieldReviewLanguage:   r.ReviewLanguage,
		FieldRating:           strconv.FormatFloat(r.Rating, 'f', -1, 64),
		FieldReviewDate:       "Invalid Date",
		FieldVerifiedPurchase: "False",
		FieldDeviceType:       r.DeviceType,
		FieldNumHelpfulVotes:  formatInt(r.NumHelpfulVotes),
		FieldAppVersion:       r.AppVersion,
		FieldUserID:           formatInt(r.User.UserID),
		FieldUserAge:          formatInt(r.User.UserAge),
		FieldUserCountry:      r.User.UserCountry,
	}
	if math.IsNaN(r.Rating) {
		rec[FieldRating] = "NaN"
	}
	if r.HasValidDate() {
		rec[FieldReviewDate] = r.ReviewDate.UTC().Format(DateLayout)
	}
	if r.VerifiedPurchase {
		rec[FieldVerifiedPurchase] = "True"
	}
	if r.User.UserGender != nil {
		rec[FieldUserGender] = *r.User.UserGender
	}
	return rec
}

func formatInt(p *int64) string {
	if p == nil {
		return "NaN"
	}
	return strconv.FormatInt(*p, 10)
}
