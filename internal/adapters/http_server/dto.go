package httpserver

import (
	"math"
	"time"

	"app_reviews/internal/domain"
)

// reviewDTO is the wire form of a review. Sentinel values become null.
type reviewDTO struct {
	ReviewID         *int64   `json:"review_id"`
	AppName          string   `json:"app_name"`
	AppCategory      string   `json:"app_category"`
	ReviewText       string   `json:"review_text"`
	ReviewLanguage   string   `json:"review_language"`
	Rating           *float64 `json:"rating"`
	Sentiment        string   `json:"sentiment"`
	ReviewDate       *string  `json:"review_date"`
	VerifiedPurchase bool     `json:"verified_purchase"`
	DeviceType       string   `json:"device_type"`
	NumHelpfulVotes  *int64   `json:"num_helpful_votes"`
	AppVersion       string   `json:"app_version"`
	User             userDTO  `json:"user"`
}

type userDTO struct {
	UserID      *int64  `json:"user_id"`
	UserAge     *int64  `json:"user_age"`
	UserCountry string  `json:"user_country"`
	UserGender  *string `json:"user_gender"`
}

func toReviewDTOs(rs []domain.Review) []reviewDTO {
	out := make([]reviewDTO, len(rs))
	for i, rv := range rs {
		d := reviewDTO{
			ReviewID:         rv.ReviewID,
			AppName:          rv.AppName,
			AppCategory:      rv.AppCategory,
			ReviewText:       rv.ReviewText,
			ReviewLanguage:   rv.ReviewLanguage,
			Sentiment:        string(domain.Classify(rv.Rating)),
			VerifiedPurchase: rv.VerifiedPurchase,
			DeviceType:       rv.DeviceType,
			NumHelpfulVotes:  rv.NumHelpfulVotes,
			AppVersion:       rv.AppVersion,
			User: userDTO{
				UserID:      rv.User.UserID,
				UserAge:     rv.User.UserAge,
				UserCountry: rv.User.UserCountry,
				UserGender:  rv.User.UserGender,
			},
		}
		if !math.IsNaN(rv.Rating) && !math.IsInf(rv.Rating, 0) {
			f := rv.Rating
			d.Rating = &f
		}
		if rv.HasValidDate() {
			s := rv.ReviewDate.UTC().Format(time.RFC3339)
			d.ReviewDate = &s
		}
		out[i] = d
	}
	return out
}
