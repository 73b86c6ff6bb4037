// Package server exposes the risk engine over HTTP.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/infinity-soul/risk-cli/internal/audit"
	"github.com/infinity-soul/risk-cli/internal/engine"
	"github.com/infinity-soul/risk-cli/internal/model"
	"github.com/infinity-soul/risk-cli/internal/store"
)

// Server wires the engine, the assessment store, and the auditor into an
// HTTP API. Store and auditor are optional; their routes 404 when absent.
type Server struct {
	engine  *engine.Engine
	store   store.Store
	auditor *audit.Auditor
}

// New constructs a Server.
func New(e *engine.Engine, st store.Store, au *audit.Auditor) *Server {
	return &Server{engine: e, store: st, auditor: au}
}

// Router builds the chi handler with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/batch", s.handleAnalyzeBatch)
		r.Post("/cohort/campus", s.handleCampusCohort)
		r.Post("/portfolio", s.handlePortfolio)
		if s.auditor != nil {
			r.Post("/audit", s.handleAudit)
		}
		if s.store != nil {
			r.Get("/assessments", s.handleListAssessments)
			r.Get("/assessments/{id}", s.handleGetAssessment)
		}
	})

	return r
}

// requestLogger logs each request with the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case model.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case store.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		zap.L().Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
