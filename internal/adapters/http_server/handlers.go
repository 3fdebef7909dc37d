package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"app_reviews/internal/app"
	"app_reviews/internal/domain"
)

// Runner executes one analysis run. *app.AnalysisService satisfies it.
type Runner interface {
	Run(ctx context.Context) (domain.Report, error)
}

type Handlers struct {
	Q      *app.QueryService
	Runner Runner // nil disables POST /v1/runs

	running sync.Mutex
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Group(func(r chi.Router) {
		r.Use(Timeout(s.opts.RunTimeout))
		r.Post("/v1/runs", h.createRun)
	})

	s.mux.Group(func(r chi.Router) {
		r.Use(Timeout(s.opts.Timeout))
		r.Get("/v1/reports/latest", h.getLatestReport)
		r.Get("/v1/reports/{id}", h.getReport)
		r.Get("/v1/reports/{id}/sentiment/apps", h.getSentimentByApp)
		r.Get("/v1/reports/{id}/sentiment/languages", h.getSentimentByLanguage)
		r.Get("/v1/reports/{id}/summary", h.getSummary)
		r.Get("/v1/reviews", h.listReviews)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", what+" not found")
	case errors.Is(err, domain.ErrNoReviews):
		writeProblem(w, http.StatusUnprocessableEntity, "No Reviews", err.Error())
	case errors.Is(err, domain.ErrNoSource):
		writeProblem(w, http.StatusServiceUnavailable, "No Dataset", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeProblem(w, http.StatusGatewayTimeout, "Timeout", err.Error())
	default:
		log.Error().Err(err).Str("what", what).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON answers 304 when the client already holds this representation.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func (h *Handlers) createRun(w http.ResponseWriter, r *http.Request) {
	if h.Runner == nil {
		writeProblem(w, http.StatusServiceUnavailable, "Runs Disabled", "this server does not run analyses")
		return
	}
	if !h.running.TryLock() {
		writeProblem(w, http.StatusConflict, "Run In Progress", "another analysis run is in progress")
		return
	}
	defer h.running.Unlock()

	rep, err := h.Runner.Run(r.Context())
	if err != nil {
		writeError(w, err, "run")
		return
	}
	w.Header().Set("Location", "/v1/reports/"+rep.ID)
	writeJSON(w, r, http.StatusCreated, rep)
}

func (h *Handlers) report(w http.ResponseWriter, r *http.Request) (domain.Report, bool) {
	id := chi.URLParam(r, "id")
	rep, err := h.Q.GetReport(r.Context(), id)
	if err != nil {
		writeError(w, err, "report "+id)
		return domain.Report{}, false
	}
	return rep, true
}

func (h *Handlers) getLatestReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Q.LatestReport(r.Context())
	if err != nil {
		writeError(w, err, "report")
		return
	}
	writeJSON(w, r, http.StatusOK, rep)
}

func (h *Handlers) getReport(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.report(w, r); ok {
		writeJSON(w, r, http.StatusOK, rep)
	}
}

func (h *Handlers) getSentimentByApp(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.report(w, r); ok {
		writeJSON(w, r, http.StatusOK, rep.ByApp)
	}
}

func (h *Handlers) getSentimentByLanguage(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.report(w, r); ok {
		writeJSON(w, r, http.StatusOK, rep.ByLanguage)
	}
}

func (h *Handlers) getSummary(w http.ResponseWriter, r *http.Request) {
	if rep, ok := h.report(w, r); ok {
		writeJSON(w, r, http.StatusOK, rep.Summary)
	}
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	limit := 50
	if ls := qs.Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 500 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 500")
			return
		}
		limit = l
	}

	out, err := h.Q.ListReviews(r.Context(), domain.ReviewQuery{
		ReportID: qs.Get("report"),
		App:      qs.Get("app"),
		Lang:     qs.Get("lang"),
		Limit:    limit,
	})
	if err != nil {
		writeError(w, err, "reviews")
		return
	}
	writeJSON(w, r, http.StatusOK, toReviewDTOs(out))
}
