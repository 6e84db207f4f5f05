// Package httpapi serves the decision endpoint over HTTP/JSON.
//
//	POST /ontology/check_and_update  structured request -> decision
//	POST /ontology/interpret         free text -> oracle -> decision
//	GET  /ontology/graph             full graph snapshot
//	GET  /healthz
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/neurorouter"

	"github.com/ppiankov/ontoguard/internal/decide"
	"github.com/ppiankov/ontoguard/internal/graph"
	"github.com/ppiankov/ontoguard/internal/ingest"
	"github.com/ppiankov/ontoguard/internal/interpret"
	"github.com/ppiankov/ontoguard/internal/model"
	"github.com/ppiankov/ontoguard/internal/server"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Server is the HTTP front end.
type Server struct {
	orch       *decide.Orchestrator
	oracle     interpret.Oracle
	logger     *slog.Logger
	httpServer *http.Server
}

// New creates a Server. A nil oracle disables /ontology/interpret.
func New(orch *decide.Orchestrator, oracle interpret.Oracle, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{orch: orch, oracle: oracle, logger: logger}
}

// Start listens on addr. Blocks until Shutdown.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("http listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the listener and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeStatus(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		stats := s.orch.Store().Stats()
		writeJSON(w, http.StatusOK, map[string]any{
			"status":        "ok",
			"concepts":      stats.Concepts,
			"instances":     stats.Instances,
			"relationships": stats.Relationships,
		})
	})
	mux.HandleFunc("/ontology/graph", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeStatus(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		writeJSON(w, http.StatusOK, s.orch.Store().Snapshot())
	})
	mux.HandleFunc("/ontology/check_and_update", s.handleCheck)
	mux.HandleFunc("/ontology/interpret", s.handleInterpret)
	return mux
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeStatus(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		writeStatus(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	req, err := ingest.Parse(body)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.orch.Decide(r.Context(), req)
	s.writeOutcome(w, out, err)
}

func (s *Server) handleInterpret(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeStatus(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.oracle == nil {
		writeStatus(w, http.StatusNotImplemented, "interpretation oracle not configured")
		return
	}

	var in struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&in); err != nil {
		writeStatus(w, http.StatusBadRequest, "invalid json request")
		return
	}
	text := strings.TrimSpace(in.Action)
	if text == "" {
		writeStatus(w, http.StatusBadRequest, "action is required")
		return
	}

	interpretation, err := s.oracle.Interpret(r.Context(), text)
	if err != nil {
		s.logger.Warn("interpretation failed", "error", err)
		code := http.StatusBadGateway
		if errors.Is(err, neurorouter.ErrRateLimited) {
			code = http.StatusTooManyRequests
		}
		writeStatus(w, code, "An error occurred: "+err.Error())
		return
	}

	out, err := s.orch.DecideText(r.Context(), text, interpretation)
	s.writeOutcome(w, out, err)
}

func (s *Server) writeOutcome(w http.ResponseWriter, out decide.Outcome, err error) {
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case decide.IsValidation(err):
			code = http.StatusBadRequest
		case errors.Is(err, graph.ErrStoreUnavailable):
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, server.ReplyFor(out))
		return
	}

	code := http.StatusOK
	if out.Response.Status == model.StatusDanger {
		code = http.StatusForbidden
	}
	writeJSON(w, code, server.ReplyFor(out))
}

func writeStatus(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, model.Response{Status: model.StatusError, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
