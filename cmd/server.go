package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/indigoandlavender/agenz2-willow-morocco/internal/model"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/store"
	"github.com/indigoandlavender/agenz2-willow-morocco/internal/validate"
)

// maxListingsBody caps the size of a listings upload.
const maxListingsBody = 8 << 20

func buildRouter(env *appEnv) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/properties/{id}", func(r chi.Router) {
		r.Get("/valuation", env.handleValuation)
		r.Get("/compliance", env.handleCompliance)
	})
	r.Get("/opportunities/alpha", env.handleAlpha)
	r.Post("/listings/gaps", env.handleGaps)
	r.Get("/cache/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, env.Cache.Stats())
	})

	return r
}

func (e *appEnv) handleValuation(w http.ResponseWriter, r *http.Request) {
	res, err := e.valueProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (e *appEnv) handleCompliance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	purchase, err := parseDate(q.Get("purchase_date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	_, res, err := e.auditProperty(r.Context(), chi.URLParam(r, "id"), purchase, q.Get("nationality"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (e *appEnv) handleAlpha(w http.ResponseWriter, r *http.Request) {
	minAlpha := -1.0
	if s := r.URL.Query().Get("min"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "min must be a non-negative number"})
			return
		}
		minAlpha = v
	}
	opps, err := e.alphaOpportunities(r.Context(), minAlpha)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opps)
}

func (e *appEnv) handleGaps(w http.ResponseWriter, r *http.Request) {
	var listings []model.ScrapedListing
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxListingsBody)).Decode(&listings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	writeJSON(w, http.StatusOK, e.analyzeListings(listings))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps store and validation errors to HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "property not found"})
	case validate.Fields(err) != nil:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "invalid property record",
			"fields": validate.Fields(err),
		})
	default:
		zap.L().Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
