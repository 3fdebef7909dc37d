package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"app_reviews/internal/domain"
)

const latestReportKey = "report:latest"

func reportKey(id string) string { return fmt.Sprintf("report:%s", id) }

// ReviewSink receives the cleaned reviews of a run before they are analysed.
type ReviewSink func(ctx context.Context, reviews []domain.Review) error

// RunObserver receives the outcome of every finished run (metrics hook).
type RunObserver interface {
	ObserveRun(rep domain.Report, dur time.Duration)
}

type AnalysisService struct {
	source   domain.RowSource
	repo     domain.ReviewRepository
	cache    domain.Cache
	norm     *Normalizer
	cacheTTL time.Duration
	obs      RunObserver
	sink     ReviewSink

	now   func() time.Time
	newID func() string
}

// NewAnalysisService wires a run. repo and cache may be nil.
func NewAnalysisService(src domain.RowSource, repo domain.ReviewRepository, cache domain.Cache, policy domain.CoercionPolicy, ttl time.Duration) *AnalysisService {
	return &AnalysisService{
		source:   src,
		repo:     repo,
		cache:    cache,
		norm:     NewNormalizer(policy),
		cacheTTL: ttl,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

func (s *AnalysisService) WithObserver(o RunObserver) *AnalysisService {
	s.obs = o
	return s
}

// WithSink makes every run hand its cleaned reviews to fn (e.g. a CSV export).
func (s *AnalysisService) WithSink(fn ReviewSink) *AnalysisService {
	s.sink = fn
	return s
}

// Run reads the dataset, cleans it, analyses it and stores the report.
func (s *AnalysisService) Run(ctx context.Context) (domain.Report, error) {
	if s.source == nil {
		return domain.Report{}, domain.ErrNoSource
	}
	start := s.now()

	rows, err := s.source.Rows(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("read %s: %w", s.source.Name(), err)
	}

	reviews, stats := s.norm.Normalize(rows)
	log.Info().
		Str("source", s.source.Name()).
		Int("read", stats.Read).
		Int("kept", stats.Kept).
		Int("dropped_missing", stats.DroppedMissing).
		Int("dropped_malformed", stats.DroppedMalformed).
		Msg("dataset normalized")
	if len(reviews) == 0 {
		return domain.Report{}, fmt.Errorf("%s: %w", s.source.Name(), domain.ErrNoReviews)
	}

	if s.sink != nil {
		if err := s.sink(ctx, reviews); err != nil {
			return domain.Report{}, fmt.Errorf("export reviews: %w", err)
		}
	}

	byApp, byLang, summary, err := Analyze(ctx, reviews)
	if err != nil {
		return domain.Report{}, err
	}

	rep := domain.Report{
		ID:          s.newID(),
		Source:      s.source.Name(),
		Policy:      s.norm.Policy(),
		GeneratedAt: s.now().UTC(),
		Stats:       stats,
		ByApp:       byApp,
		ByLanguage:  byLang,
		Summary:     summary,
	}

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, rep, reviews); err != nil {
			// an unstored run cannot be queried later, so it fails
			return domain.Report{}, fmt.Errorf("save run %s: %w", rep.ID, err)
		}
	}
	if s.cache != nil {
		ttl := int(s.cacheTTL.Seconds())
		if err := s.cache.Set(ctx, reportKey(rep.ID), rep, ttl); err != nil {
			log.Warn().Err(err).Str("report", rep.ID).Msg("cache report failed")
		}
		if err := s.cache.Set(ctx, latestReportKey, rep, ttl); err != nil {
			log.Warn().Err(err).Msg("cache latest report failed")
		}
	}

	dur := s.now().Sub(start)
	if s.obs != nil {
		s.obs.ObserveRun(rep, dur)
	}
	log.Info().
		Str("report", rep.ID).
		Int("apps", len(rep.ByApp)).
		Int("languages", len(rep.ByLanguage)).
		Str("most_reviewed_app", rep.Summary.MostReviewedApp).
		Dur("duration", dur).
		Msg("analysis completed")
	return rep, nil
}

// Analyze runs the two sentiment aggregations and the summary statistics
// over the same cleaned collection. They only read reviews, so they run in
// parallel.
func Analyze(ctx context.Context, reviews []domain.Review) (byApp, byLang []domain.SentimentSummary, summary domain.SummaryStatistics, err error) {
	if len(reviews) == 0 {
		return nil, nil, domain.SummaryStatistics{}, domain.ErrNoReviews
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, domain.SummaryStatistics{}, err
	}

	var g errgroup.Group
	g.Go(func() error {
		byApp = SentimentByApp(reviews)
		return nil
	})
	g.Go(func() error {
		byLang = SentimentByLanguage(reviews)
		return nil
	})
	g.Go(func() error {
		var serr error
		summary, serr = Summarize(reviews)
		return serr
	})
	if err := g.Wait(); err != nil {
		return nil, nil, domain.SummaryStatistics{}, err
	}
	return byApp, byLang, summary, nil
}
