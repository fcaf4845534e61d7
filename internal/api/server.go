// Package api serves analysis results over a JSON REST API.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/tracelens/internal/analyzer"
)

// Server exposes one analysis run's results. The result snapshot is
// immutable once the server is constructed; rerunning the analysis means
// restarting the server.
type Server struct {
	result *analyzer.Result
	router *chi.Mux
}

// NewServer creates a Server over a completed analysis result.
func NewServer(result *analyzer.Result) *Server {
	s := &Server{
		result: result,
		router: chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/summary", s.handleSummary)
		r.Get("/counters", s.handleCounters)
		r.Get("/trace-names", s.handleTraceNames)
		r.Get("/suggestions", s.handleSuggestions)
		r.Get("/warnings", s.handleWarnings)
		r.Get("/usage", s.handleUsage)
		r.Get("/fields", s.handleFields)
	})

	return s
}

// Handler returns the HTTP handler for mounting or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.result.Summary)
}

func (s *Server) handleCounters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.result.Counters)
}

func (s *Server) handleTraceNames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.result.TraceNames)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.result.Suggestions))
}

func (s *Server) handleWarnings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.result.Warnings))
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.result.UsageList))
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, orEmpty(s.result.FieldStats))
}

// orEmpty keeps empty collections rendering as [] instead of null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}
