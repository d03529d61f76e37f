// Package server is the local HTTP proxy in front of the agent service. It
// serves the same /api/chat contract the browser client used, so web front
// ends can talk to the agent without reaching it directly.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/iksnae/agent-chat/internal"
	"github.com/iksnae/agent-chat/internal/agent"
	"github.com/iksnae/agent-chat/internal/metrics"
)

// Agent is the part of the agent client the proxy needs
type Agent interface {
	CreateSession(ctx context.Context, userID, sessionID string) error
	Run(ctx context.Context, req agent.RunRequest) (string, error)
}

var _ Agent = (*agent.Client)(nil)

// Server routes /api/chat to the agent service
type Server struct {
	agent Agent
	newID func() string
}

// New creates a proxy in front of a
func New(a Agent) *Server {
	return &Server{agent: a, newID: uuid.NewString}
}

// Routes returns the proxy router
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/chat", s.handleCreateSession)
	r.Post("/api/chat", s.handleTurn)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

// ListenAndServe serves Routes on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		internal.LogInfo("Proxy listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type sessionResponse struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
}

type turnRequest struct {
	UserID    string             `json:"userId"`
	SessionID string             `json:"sessionId"`
	Message   string             `json:"message"`
	History   []internal.Message `json:"history"`
	Messages  []internal.Message `json:"messages"` // older clients sent the transcript here
}

type turnResponse struct {
	Response string `json:"response"`
}

// handleCreateSession mints a user/session pair and registers it upstream.
// A rejection by the agent service is logged and the pair still returned;
// only an unreachable service fails the request.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID := s.newID(), s.newID()

	err := s.agent.CreateSession(r.Context(), userID, sessionID)
	var backendErr *internal.BackendError
	switch {
	case err == nil:
		metrics.SessionCreated(true)
	case errors.As(err, &backendErr):
		internal.LogWarn("Agent service rejected session %s: %v", sessionID, err)
		metrics.SessionCreated(false)
	default:
		internal.LogError("Error creating session: %v", err)
		metrics.SessionCreated(false)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{UserID: userID, SessionID: sessionID})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.SessionID == "" || req.Message == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	history := req.History
	if history == nil {
		history = req.Messages
	}

	start := time.Now()
	reply, err := s.agent.Run(r.Context(), agent.RunRequest{
		UserID:     req.UserID,
		SessionID:  req.SessionID,
		History:    history,
		NewMessage: req.Message,
	})
	metrics.ObserveTurn(err == nil, internal.FaultClass(err), time.Since(start))

	if err != nil {
		internal.LogError("Error in chat route (%s): %v", internal.FaultClass(err), err)
		var backendErr *internal.BackendError
		switch {
		case errors.As(err, &backendErr):
			http.Error(w, backendErr.Body, backendErr.Status)
		case errors.Is(err, internal.ErrMalformedResponse):
			http.Error(w, "Invalid response from backend", http.StatusInternalServerError)
		default:
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	if reply == "" {
		reply = "..."
	}
	writeJSON(w, http.StatusOK, turnResponse{Response: reply})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		internal.LogDebug("Failed to write response: %v", err)
	}
}

// requestLogger logs one line per request through the shared logger
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		internal.Logger().Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
