package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"app_reviews/internal/domain"
)

const namespace = "app_reviews"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	ExternalRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "external_requests_total", Help: "Outbound requests."},
		[]string{"service", "endpoint", "status"},
	)
	ExternalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "external_request_duration_seconds",
			Help:    "Outbound request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets/dels/errors."},
		[]string{"cache", "event"}, // event: hit|miss|set|del|error
	)

	// pipeline
	RowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rows_total", Help: "Raw rows by normalization outcome."},
		[]string{"outcome"}, // kept|dropped_missing|dropped_malformed
	)
	SentinelCoercions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "sentinel_coercions_total", Help: "Fields that fell back to a sentinel value."},
		[]string{"field"},
	)
	ReviewsBySentiment = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "reviews_by_sentiment_total", Help: "Classified reviews."},
		[]string{"sentiment"},
	)
	RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "run_duration_seconds",
			Help:    "Analysis run duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Serve exposes reg on addr/metrics in the background. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return // disabled
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		HTTPRequests, HTTPLatency, ExternalRequests, ExternalLatency, CacheEvents,
		RowsTotal, SentinelCoercions, ReviewsBySentiment, RunDuration,
	)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveExternal(service, endpoint string, status int, dur time.Duration) {
	ExternalRequests.WithLabelValues(service, endpoint, strconv.Itoa(status)).Inc()
	ExternalLatency.WithLabelValues(service, endpoint).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

// PipelineObserver feeds finished runs into the pipeline metrics.
type PipelineObserver struct{}

func (PipelineObserver) ObserveRun(rep domain.Report, dur time.Duration) {
	RowsTotal.WithLabelValues("kept").Add(float64(rep.Stats.Kept))
	RowsTotal.WithLabelValues("dropped_missing").Add(float64(rep.Stats.DroppedMissing))
	RowsTotal.WithLabelValues("dropped_malformed").Add(float64(rep.Stats.DroppedMalformed))
	for field, n := range rep.Stats.Sentinels {
		SentinelCoercions.WithLabelValues(field).Add(float64(n))
	}

	var pos, neu, neg int
	for _, s := range rep.ByApp {
		pos += s.Positive
		neu += s.Neutral
		neg += s.Negative
	}
	ReviewsBySentiment.WithLabelValues(string(domain.Positive)).Add(float64(pos))
	ReviewsBySentiment.WithLabelValues(string(domain.Neutral)).Add(float64(neu))
	ReviewsBySentiment.WithLabelValues(string(domain.Negative)).Add(float64(neg))

	RunDuration.Observe(dur.Seconds())
}

func LabelErr(err error) string {
	if err == nil {
		return "none"
	}
	return fmt.Sprintf("%T", err)
}
