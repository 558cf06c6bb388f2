// Package server exposes the web-chat HTTP surface: the stateless chat
// endpoint, health and stats, and the mounted WhatsApp webhook.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/induxo/chatcore/internal/generator"
	"github.com/induxo/chatcore/internal/metrics"
	"github.com/induxo/chatcore/internal/models"
)

// Responder produces a reply for one chat turn. The web channel is
// stateless: history arrives with every request and nothing is stored
// between calls.
type Responder interface {
	Respond(ctx context.Context, userMessage string, history []models.Message) generator.Reply
}

// StatsSource provides the metrics snapshot served on /stats.
type StatsSource interface {
	Snapshot() metrics.Snapshot
}

type Server struct {
	responder Responder
	stats     StatsSource
	webhook   http.Handler
	logger    *slog.Logger
}

type Options struct {
	Responder Responder
	Stats     StatsSource
	// Webhook is mounted at /webhook/whatsapp when set.
	Webhook http.Handler
	Logger  *slog.Logger
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Server{
		responder: opts.Responder,
		stats:     opts.Stats,
		webhook:   opts.Webhook,
		logger:    opts.Logger,
	}
}

// Handler builds the full route tree with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handle(s.chat))
	mux.HandleFunc("GET /health", s.handle(s.health))
	mux.HandleFunc("GET /stats", s.handle(s.statsHandler))
	if s.webhook != nil {
		mux.Handle("/webhook/whatsapp", s.webhook)
	}
	return recoverMiddleware(s.logger, loggingMiddleware(s.logger, mux))
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts an error-returning endpoint: an *HTTPError is mapped to
// its status with the user-safe message, anything else becomes a generic
// 500 apology. The underlying error only ever reaches the log.
func (s *Server) handle(f handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}

		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.ErrorLog != nil {
				s.logger.Error("request error", "path", r.URL.Path, "status", httpErr.StatusCode, "error", httpErr.ErrorLog)
			}
			writeJSON(w, httpErr.StatusCode, models.ChatResponse{
				Message: httpErr.Message,
				Error:   httpErr.Message,
			})
			return
		}

		s.logger.Error("unhandled request error", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, genericErrorBody())
	}
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) error {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "request body must be valid JSON",
			ErrorLog:   err,
		}
	}

	if strings.TrimSpace(req.Message) == "" {
		return &HTTPError{
			StatusCode: http.StatusBadRequest,
			Message:    "message must not be empty",
		}
	}

	if s.responder == nil {
		return &HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Message:    generator.ApologyMessage,
		}
	}

	reply := s.responder.Respond(r.Context(), req.Message, models.HistoryFromTurns(req.ConversationHistory))

	return writeJSON(w, http.StatusOK, models.ChatResponse{
		Message:    reply.Message,
		NeedsAgent: reply.NeedsAgent,
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) error {
	if s.stats == nil {
		return writeJSON(w, http.StatusOK, metrics.Snapshot{})
	}
	return writeJSON(w, http.StatusOK, s.stats.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func genericErrorBody() models.ChatResponse {
	return models.ChatResponse{
		Message: generator.ApologyMessage,
		Error:   "internal error",
	}
}
