package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"app_reviews/internal/app"
	"app_reviews/internal/domain"
)

type fakeSource struct {
	rows []domain.RawRecord
	err  error
}

func (s fakeSource) Name() string { return "fake.csv" }
func (s fakeSource) Rows(ctx context.Context) ([]domain.RawRecord, error) {
	return s.rows, s.err
}

type recordingObserver struct {
	reports []domain.Report
}

func (o *recordingObserver) ObserveRun(rep domain.Report, dur time.Duration) {
	o.reports = append(o.reports, rep)
}

func row(id, appName, lang, rating, device string) domain.RawRecord {
	return domain.RawRecord{
		"review_id":         id,
		"app_name":          appName,
		"app_category":      "Productivity",
		"review_text":       "text",
		"review_language":   lang,
		"rating":            rating,
		"review_date":       "2024-01-02",
		"verified_purchase": "True",
		"device_type":       device,
		"num_helpful_votes": "0",
		"app_version":       "1.0",
		"user_id":           "7",
		"user_age":          "30",
		"user_country":      "India",
	}
}

func TestRun_EndToEnd(t *testing.T) {
	incomplete := row("4", "Zoom", "en", "5", "iOS")
	delete(incomplete, "app_version")

	src := fakeSource{rows: []domain.RawRecord{
		row("1", "Zoom", "en", "4.5", "iOS"),
		row("2", "Zoom", "es", "1", "Android"),
		row("3", "Slack", "en", "3", "iOS"),
		incomplete,
		row("5", "Zoom", "en", "abc", "iOS"),
	}}
	repo := &fakeRepo{}
	cache := &fakeCache{}
	obs := &recordingObserver{}

	svc := app.NewAnalysisService(src, repo, cache, domain.PolicyLenient, time.Minute).WithObserver(obs)
	rep, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if rep.ID == "" || rep.Source != "fake.csv" || rep.Policy != domain.PolicyLenient {
		t.Fatalf("unexpected report header: %+v", rep)
	}
	if rep.Stats.Read != 5 || rep.Stats.Kept != 4 || rep.Stats.DroppedMissing != 1 {
		t.Fatalf("unexpected stats: %+v", rep.Stats)
	}
	if len(rep.ByApp) != 2 || rep.ByApp[0].Key != "Zoom" || rep.ByApp[0].Positive != 1 ||
		rep.ByApp[0].Negative != 1 || rep.ByApp[0].Neutral != 1 {
		t.Fatalf("unexpected by-app: %+v", rep.ByApp)
	}
	if len(rep.ByLanguage) != 2 || rep.ByLanguage[0].Key != "en" || rep.ByLanguage[1].Key != "es" {
		t.Fatalf("unexpected by-language: %+v", rep.ByLanguage)
	}
	if rep.Summary.MostReviewedApp != "Zoom" || rep.Summary.MostReviews != 3 || rep.Summary.MostUsedDevice != "iOS" {
		t.Fatalf("unexpected summary: %+v", rep.Summary)
	}

	if len(repo.saved) != 1 || len(repo.reviews) != 4 {
		t.Fatalf("repo saved %d reports / %d reviews", len(repo.saved), len(repo.reviews))
	}
	if _, ok := cache.store["report:"+rep.ID]; !ok {
		t.Fatalf("report not cached by id")
	}
	if _, ok := cache.store["report:latest"]; !ok {
		t.Fatalf("latest report not cached")
	}
	if len(obs.reports) != 1 || obs.reports[0].ID != rep.ID {
		t.Fatalf("observer saw %+v", obs.reports)
	}

	// the stored run is readable through the query side
	q := app.NewQueryService(repo, cache, time.Minute)
	latest, err := q.LatestReport(context.Background())
	if err != nil || latest.ID != rep.ID {
		t.Fatalf("latest=%+v err=%v", latest, err)
	}
}

func TestRun_StrictPolicy(t *testing.T) {
	src := fakeSource{rows: []domain.RawRecord{
		row("1", "Zoom", "en", "4.5", "iOS"),
		row("2", "Zoom", "en", "abc", "iOS"),
	}}
	rep, err := app.NewAnalysisService(src, nil, nil, domain.PolicyStrict, 0).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.Stats.Kept != 1 || rep.Stats.DroppedMalformed != 1 {
		t.Fatalf("unexpected stats: %+v", rep.Stats)
	}
	if rep.Summary.AvgRating != 4.5 {
		t.Fatalf("avg = %v, want 4.5", rep.Summary.AvgRating)
	}
}

func TestRun_NoSurvivors(t *testing.T) {
	bad := row("1", "Zoom", "en", "4", "iOS")
	bad["user_country"] = ""
	src := fakeSource{rows: []domain.RawRecord{bad}}
	repo := &fakeRepo{}

	_, err := app.NewAnalysisService(src, repo, nil, domain.PolicyLenient, 0).Run(context.Background())
	if !errors.Is(err, domain.ErrNoReviews) {
		t.Fatalf("want ErrNoReviews, got %v", err)
	}
	if len(repo.saved) != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestRun_SourceAndStoreErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := app.NewAnalysisService(fakeSource{err: boom}, nil, nil, "", 0).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("want source error, got %v", err)
	}

	src := fakeSource{rows: []domain.RawRecord{row("1", "Zoom", "en", "4", "iOS")}}
	_, err = app.NewAnalysisService(src, &fakeRepo{saveErr: boom}, nil, "", 0).Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("want store error, got %v", err)
	}

	_, err = app.NewAnalysisService(nil, nil, nil, "", 0).Run(context.Background())
	if !errors.Is(err, domain.ErrNoSource) {
		t.Fatalf("want ErrNoSource, got %v", err)
	}
}

func TestRun_SinkSeesCleanedReviews(t *testing.T) {
	src := fakeSource{rows: []domain.RawRecord{
		row("1", "Zoom", "en", "4", "iOS"),
		row("2", "", "en", "4", "iOS"),
		row("3", "Slack", "de", "x", "Android"),
	}}
	var got []domain.Review
	svc := app.NewAnalysisService(src, nil, nil, domain.PolicyLenient, 0).
		WithSink(func(ctx context.Context, reviews []domain.Review) error {
			got = reviews
			return nil
		})
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != 2 || got[0].AppName != "Zoom" || got[1].AppName != "Slack" {
		t.Fatalf("sink got %+v", got)
	}

	boom := errors.New("disk full")
	_, err := app.NewAnalysisService(src, nil, nil, "", 0).
		WithSink(func(context.Context, []domain.Review) error { return boom }).
		Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("want sink error, got %v", err)
	}
}

func TestAnalyze_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, _, err := app.Analyze(ctx, []domain.Review{rev("A", "en", "iOS", 3)})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
