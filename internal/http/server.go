// Package http exposes the insights engine over a thin JSON API. It renders
// nothing: presentation belongs to the clients.
package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"moneta/internal/core"
	"moneta/internal/insights"
	"moneta/internal/log"
)

type Server struct {
	http.Server
	svc          *insights.Service
	baseCurrency string
	logger       *log.Logger
}

func NewServer(addr string, svc *insights.Service, baseCurrency string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		svc:          svc,
		baseCurrency: baseCurrency,
		logger:       logger.WithComponent(log.ComponentHTTP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/insights", s.handleInsights)
	mux.HandleFunc("/api/insights/window", s.handleWindowInsights)
	mux.HandleFunc("/api/cache/invalidate", s.handleInvalidate)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInsights serves the insight set and period buckets for a granularity.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	g := core.Granularity(strings.TrimSpace(r.URL.Query().Get("granularity")))
	if g == "" {
		g = core.Month
	}
	if err := g.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "unknown granularity")
		return
	}

	res, err := s.svc.GenerateAllInsights(r.Context(), g, s.currency(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Insight computation failed",
			log.FieldError, err.Error(),
			log.FieldGranularity, string(g))
		writeError(w, http.StatusInternalServerError, "insight computation failed")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// handleWindowInsights serves the insight set for a preset time window.
func (s *Server) handleWindowInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	preset := insights.WindowPreset(strings.TrimSpace(r.URL.Query().Get("preset")))
	if preset == "" {
		preset = insights.PresetLast30Days
	}
	if err := preset.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "unknown window preset")
		return
	}

	ins, err := s.svc.GenerateWindowInsights(r.Context(), preset, s.currency(r))
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Window insight computation failed",
			log.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "insight computation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"insights": ins})
}

// handleInvalidate drops cached insight sets, optionally only for one
// currency.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if cur := strings.TrimSpace(r.URL.Query().Get("currency")); cur != "" {
		n := s.svc.InvalidateCurrency(cur)
		writeJSON(w, http.StatusOK, map[string]any{"entries_removed": n})
		return
	}

	s.svc.InvalidateCache()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) currency(r *http.Request) string {
	if cur := strings.TrimSpace(r.URL.Query().Get("currency")); cur != "" {
		return cur
	}
	return s.baseCurrency
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
