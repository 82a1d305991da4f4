// Package web exposes the simulation lab over HTTP. Handlers stay thin: JSON
// in, lab pipeline, JSON out. The response body is always well-formed; errors
// ride the single-element envelope with a non-2xx status alongside.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"

	"github.com/san-kum/battsim/internal/lab"
	"github.com/san-kum/battsim/internal/params"
	"github.com/san-kum/battsim/internal/protocol"
	"github.com/san-kum/battsim/internal/series"
)

// Env carries environment overrides for serving; file config wins unless the
// variable is set.
type Env struct {
	Addr string
}

// LoadEnv reads BATTSIM_ADDR and friends.
func LoadEnv() (*Env, error) {
	var e Env
	if err := envconfig.Process("battsim", &e); err != nil {
		return nil, err
	}
	return &e, nil
}

type Server struct {
	lab        *lab.Lab
	httpServer *http.Server
}

func NewServer(addr string, l *lab.Lab) *Server {
	s := &Server{lab: l}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/chemistries", s.handleChemistries)
	mux.HandleFunc("POST /api/lab/cycling", s.handleCycling)
	mux.HandleFunc("POST /api/lab/sweep", s.handleSweep)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     withRequestID(mux),
		ReadTimeout: 15 * time.Second,
		// Solves run synchronously inside the request; give them room.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("web: shutdown: %v", err)
		}
	}()

	log.Printf("web: listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleCycling(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		writeResult(w, series.Fail(err), http.StatusBadRequest)
		return
	}
	result := s.lab.Cycling(r.Context(), req)
	writeResult(w, result, statusOf(result.Err))
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		writeResult(w, series.Fail(err), http.StatusBadRequest)
		return
	}
	result := s.lab.RateSweep(r.Context(), req)
	writeResult(w, result, statusOf(result.Err))
}

func (s *Server) handleChemistries(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(params.List()); err != nil {
		log.Printf("web: encode chemistries: %v", err)
	}
}

// decodeRequest tolerates an empty body; every request field is optional.
func decodeRequest(r *http.Request) (lab.Request, error) {
	var req lab.Request
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return lab.Request{}, err
	}
	return req, nil
}

func writeResult(w http.ResponseWriter, result series.Result, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("web: encode result: %v", err)
	}
}

// statusOf pairs the error envelope with a status code: input errors are the
// client's, solver failures are the backend's.
func statusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, params.ErrUnknownChemistry),
		errors.Is(err, params.ErrNoVoltageLimits),
		errors.Is(err, params.ErrMissingBaseValue),
		errors.Is(err, protocol.ErrEmptyRateList):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("web: %s %s %s %v", id[:8], r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}
