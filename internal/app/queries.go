package app

import (
	"context"
	"time"

	"app_reviews/internal/domain"
)

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewQueryService serves stored reports. repo and cache may be nil.
func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetReport(ctx context.Context, id string) (domain.Report, error) {
	return s.cachedReport(ctx, reportKey(id), func() (domain.Report, error) {
		return s.repo.GetReport(ctx, id)
	})
}

func (s *QueryService) LatestReport(ctx context.Context) (domain.Report, error) {
	return s.cachedReport(ctx, latestReportKey, func() (domain.Report, error) {
		return s.repo.LatestReport(ctx)
	})
}

func (s *QueryService) cachedReport(ctx context.Context, key string, load func() (domain.Report, error)) (domain.Report, error) {
	if s.cache != nil {
		var rep domain.Report
		if ok, _ := s.cache.Get(ctx, key, &rep); ok {
			return rep, nil
		}
	}
	if s.repo == nil {
		return domain.Report{}, domain.ErrNotFound
	}
	rep, err := load()
	if err != nil {
		return domain.Report{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, rep, int(s.cacheTTL.Seconds()))
	}
	return rep, nil
}

// ListReviews reads stored reviews; they are not cached.
func (s *QueryService) ListReviews(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	if s.repo == nil {
		return nil, domain.ErrNotFound
	}
	if q.Limit <= 0 {
		q.Limit = 50
	}
	return s.repo.ListReviews(ctx, q)
}
