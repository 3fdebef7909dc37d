package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"app_reviews/internal/app"
	"app_reviews/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	saved   []domain.Report
	reviews []domain.Review
	latest  domain.Report
	byID    map[string]domain.Report
	lastQ   domain.ReviewQuery
	saveErr error
}

func (f *fakeRepo) SaveRun(ctx context.Context, rep domain.Report, rs []domain.Review) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rep)
	f.reviews = append(f.reviews, rs...)
	f.latest = rep
	return nil
}
func (f *fakeRepo) GetReport(ctx context.Context, id string) (domain.Report, error) {
	rep, ok := f.byID[id]
	if !ok {
		return domain.Report{}, domain.ErrNotFound
	}
	return rep, nil
}
func (f *fakeRepo) LatestReport(ctx context.Context) (domain.Report, error) {
	if f.latest.ID == "" {
		return domain.Report{}, domain.ErrNotFound
	}
	return f.latest, nil
}
func (f *fakeRepo) ListReviews(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	f.lastQ = q
	return f.reviews, nil
}

type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, ok := dst.(*domain.Report); ok {
		*d = v.(domain.Report)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

// ---- tests ----

func TestGetReport_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{byID: map[string]domain.Report{
		"r1": {ID: "r1", Source: "reviews.csv"},
	}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	rep, err := q.GetReport(context.Background(), "r1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rep.ID != "r1" || rep.Source != "reviews.csv" {
		t.Fatalf("unexpected report: %+v", rep)
	}

	// Mutate repo to ensure second read indeed comes from cache
	repo.byID["r1"] = domain.Report{ID: "r1", Source: "SHOULD NOT SEE THIS"}

	rep2, err := q.GetReport(context.Background(), "r1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rep2.Source != "reviews.csv" {
		t.Fatalf("expected cached source, got %s", rep2.Source)
	}
}

func TestGetReport_NotFound(t *testing.T) {
	q := app.NewQueryService(&fakeRepo{}, &fakeCache{}, time.Minute)
	if _, err := q.GetReport(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestLatestReport_CacheOnlyDeployment(t *testing.T) {
	cache := &fakeCache{}
	q := app.NewQueryService(nil, cache, time.Minute)

	if _, err := q.LatestReport(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound before any run, got %v", err)
	}

	_ = cache.Set(context.Background(), "report:latest", domain.Report{ID: "abc"}, 60)
	rep, err := q.LatestReport(context.Background())
	if err != nil || rep.ID != "abc" {
		t.Fatalf("rep=%+v err=%v", rep, err)
	}
}

func TestListReviews_DefaultLimit(t *testing.T) {
	repo := &fakeRepo{reviews: []domain.Review{{AppName: "Zoom"}}}
	q := app.NewQueryService(repo, nil, time.Minute)

	out, err := q.ListReviews(context.Background(), domain.ReviewQuery{App: "Zoom"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(out) != 1 || out[0].AppName != "Zoom" {
		t.Fatalf("unexpected reviews: %+v", out)
	}
	if repo.lastQ.Limit != 50 || repo.lastQ.App != "Zoom" {
		t.Fatalf("unexpected query passed to repo: %+v", repo.lastQ)
	}
}

func TestListReviews_NoStore(t *testing.T) {
	q := app.NewQueryService(nil, nil, time.Minute)
	if _, err := q.ListReviews(context.Background(), domain.ReviewQuery{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
