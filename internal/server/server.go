// Package server exposes the lookup flows over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bankdir/ifsc-api/internal/links"
	"github.com/bankdir/ifsc-api/internal/lookup"
)

// Server routes HTTP requests to the lookup service.
type Server struct {
	svc *lookup.Service
}

// New creates a Server over the given lookup service.
func New(svc *lookup.Service) *Server {
	return &Server{svc: svc}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/banks", s.handleBanks)
	r.Get("/by-bank", s.handleByBank)
	r.Get("/by-ifsc", s.handleByIFSC)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := s.svc.Banks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]map[string]string, len(banks))
	for i, b := range banks {
		out[i] = map[string]string{"bank": b}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleByBank(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.ByBank(r.Context(), r.URL.Query().Get("bank"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleByIFSC(w http.ResponseWriter, r *http.Request) {
	rows, err := s.svc.ByIFSC(r.Context(), r.URL.Query().Get("ifsc"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps lookup misses and upstream listing failures to 404;
// everything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	var nm *lookup.NoMatchError
	if errors.As(err, &nm) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nm.Reason})
		return
	}
	if errors.Is(err, links.ErrNoLinks) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no spreadsheet links found on source page"})
		return
	}
	zap.L().Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
