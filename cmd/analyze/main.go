package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"app_reviews/internal/adapters/console"
	"app_reviews/internal/adapters/dataset"
	"app_reviews/internal/adapters/observability"
	"app_reviews/internal/app"
	"app_reviews/internal/domain"
	"app_reviews/internal/shared"
)

func main() {
	_ = godotenv.Load() // optional .env

	input := flag.String("input", "", "dataset file (.csv or .xlsx); overrides DATASET_PATH")
	export := flag.String("export", "", "write the cleaned reviews as CSV to this path")
	strict := flag.Bool("strict", false, "drop rows with malformed numbers or dates")
	flag.Parse()

	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if *input != "" {
		cfg.DatasetPath, cfg.DatasetURL = *input, ""
	}
	if *strict {
		cfg.StrictCoercion = true
	}

	// logs go to stderr, tables to stdout
	log.Logger = observability.NewLoggerTo(os.Stderr, cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	repo, closeStore, err := cfg.OpenStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store failed")
	}
	defer closeStore()
	cache, closeCache, err := cfg.OpenCache(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.CacheDriver).Msg("open cache failed")
	}
	defer closeCache()

	src := cfg.Source()
	log.Info().
		Str("source", src.Name()).
		Str("policy", string(cfg.Policy())).
		Str("store", cfg.StoreDriver).
		Msg("analysis starting")

	svc := app.NewAnalysisService(src, repo, cache, cfg.Policy(), cfg.CacheTTL).
		WithObserver(observability.PipelineObserver{})
	if *export != "" {
		svc = svc.WithSink(func(_ context.Context, reviews []domain.Review) error {
			f, err := os.Create(*export)
			if err != nil {
				return err
			}
			if err := dataset.WriteCSV(f, reviews); err != nil {
				f.Close()
				return err
			}
			log.Info().Str("path", *export).Int("reviews", len(reviews)).Msg("cleaned reviews exported")
			return f.Close()
		})
	}

	rep, err := svc.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	out := os.Stdout
	steps := []func() error{
		func() error { return console.RenderStats(out, rep.Stats) },
		func() error { return console.RenderSentiment(out, "Sentiment by app", rep.ByApp) },
		func() error { return console.RenderSentiment(out, "Sentiment by language", rep.ByLanguage) },
		func() error { return console.RenderSummary(out, rep.Summary) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			log.Fatal().Err(err).Msg("render failed")
		}
	}
	log.Info().Str("report", rep.ID).Msg("analysis completed")
}
