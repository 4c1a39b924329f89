// Package server exposes the skill endpoint over HTTP for self-hosted
// deployments: the platform POSTs request envelopes to /alexa and receives
// response envelopes back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/voicebridge/actionable/common/version"
	"github.com/voicebridge/actionable/internal/skill/alexa"
)

// Dispatcher is the request-handling side of the skill.  The production
// implementation is *dispatch.Dispatcher.
type Dispatcher interface {
	Dispatch(ctx context.Context, env *alexa.RequestEnvelope) alexa.ResponseEnvelope
}

// Server serves the skill endpoint and a liveness probe.
type Server struct {
	addr       string
	dispatcher Dispatcher
	mux        *http.ServeMux
	srv        *http.Server
}

// healthResponse is returned by GET /healthz.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// New creates the skill HTTP server (does not start it).
func New(addr string, d Dispatcher) *Server {
	s := &Server{
		addr:       addr,
		dispatcher: d,
		mux:        http.NewServeMux(),
	}
	s.mux.HandleFunc("/alexa", s.handleSkillRequest)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	return s
}

// ServeHTTP implements http.Handler so the server can be tested without a
// live network listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start blocks serving HTTP until Shutdown is called or the listener fails.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("skill HTTP server listening", "addr", s.addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// handleSkillRequest runs one conversational turn to completion.  One turn
// is fully processed before its reply is written; the only state that
// crosses turns rides inside the envelopes.
func (s *Server) handleSkillRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var env alexa.RequestEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		slog.Warn("rejecting malformed request envelope", "err", err)
		http.Error(w, "malformed request envelope", http.StatusBadRequest)
		return
	}

	resp := s.dispatcher.Dispatch(r.Context(), &env)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to write response envelope", "err", err)
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Version: version.Version,
		Commit:  version.GitCommit,
	})
}
