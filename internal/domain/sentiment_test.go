package domain

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		rating float64
		want   Sentiment
	}{
		{5, Positive},
		{4.01, Positive},
		{4.0, Neutral},
		{3, Neutral},
		{2.0, Neutral},
		{1.99, Negative},
		{0, Negative},
		{-1, Negative},
		{math.NaN(), Neutral},
		{math.Inf(1), Positive},
		{math.Inf(-1), Negative},
	}
	for _, tt := range tests {
		if got := Classify(tt.rating); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.rating, got, tt.want)
		}
	}
}

func TestSummaryStatistics_NaNAverageIsNull(t *testing.T) {
	b, err := json.Marshal(SummaryStatistics{MostReviewedApp: "A", MostReviews: 2, AvgRating: math.NaN()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"avgRating":null`) {
		t.Fatalf("want null average, got %s", b)
	}

	var back SummaryStatistics
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !math.IsNaN(back.AvgRating) || back.MostReviewedApp != "A" || back.MostReviews != 2 {
		t.Fatalf("unexpected decode: %+v", back)
	}
}

func TestReview_RecordSentinels(t *testing.T) {
	rv := Review{
		AppName:    "Zoom",
		Rating:     math.NaN(),
		DeviceType: "iOS",
	}
	rec := rv.Record()

	for _, f := range []string{FieldReviewID, FieldNumHelpfulVotes, FieldUserID, FieldUserAge, FieldRating} {
		if rec[f] != "NaN" {
			t.Errorf("%s = %q, want NaN", f, rec[f])
		}
	}
	if rec[FieldReviewDate] != "Invalid Date" {
		t.Errorf("review_date = %q", rec[FieldReviewDate])
	}
	if rec[FieldVerifiedPurchase] != "False" {
		t.Errorf("verified_purchase = %q", rec[FieldVerifiedPurchase])
	}
	if _, ok := rec[FieldUserGender]; ok {
		t.Errorf("user_gender should be absent")
	}
}

func TestReview_RecordValues(t *testing.T) {
	id, age := int64(12), int64(40)
	gender := "Male"
	rv := Review{
		ReviewID:         &id,
		Rating:           3.5,
		ReviewDate:       time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("X", 3600)),
		VerifiedPurchase: true,
		User:             User{UserAge: &age, UserGender: &gender},
	}
	rec := rv.Record()
	if rec[FieldReviewID] != "12" || rec[FieldUserAge] != "40" || rec[FieldRating] != "3.5" {
		t.Fatalf("unexpected numbers: %v", rec)
	}
	if rec[FieldReviewDate] != "2024-05-06T06:08:09Z" {
		t.Fatalf("review_date = %q", rec[FieldReviewDate])
	}
	if rec[FieldVerifiedPurchase] != "True" || rec[FieldUserGender] != "Male" {
		t.Fatalf("unexpected record: %v", rec)
	}
}
