package app

import (
	"fmt"

	"app_reviews/internal/domain"
)

// Summarize finds the most reviewed app, its most used device and its
// average rating. Ties go to the key seen first.
func Summarize(reviews []domain.Review) (domain.SummaryStatistics, error) {
	if len(reviews) == 0 {
		return domain.SummaryStatistics{}, fmt.Errorf("summarize: %w", domain.ErrNoReviews)
	}

	app, appCount := mostFrequent(reviews, func(r domain.Review) string { return r.AppName })

	ofApp := make([]domain.Review, 0, appCount)
	for _, rv := range reviews {
		if rv.AppName == app {
			ofApp = append(ofApp, rv)
		}
	}

	device, deviceCount := mostFrequent(ofApp, func(r domain.Review) string { return r.DeviceType })

	total := 0.0
	for _, rv := range ofApp {
		total += rv.Rating
	}

	return domain.SummaryStatistics{
		MostReviewedApp: app,
		MostReviews:     appCount,
		MostUsedDevice:  device,
		MostDevices:     deviceCount,
		AvgRating:       total / float64(appCount),
	}, nil
}

// mostFrequent returns the key with the strictly highest count; on a tie the
// key that appeared first wins.
func mostFrequent(reviews []domain.Review, keyOf func(domain.Review) string) (string, int) {
	counts := make(map[string]int)
	var order []string
	for _, rv := range reviews {
		k := keyOf(rv)
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	best, bestCount := "", 0
	for _, k := range order {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best, bestCount
}
