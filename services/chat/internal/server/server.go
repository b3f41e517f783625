package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"smartbots/internal/util"
	"smartbots/pkg/assistant"
	"smartbots/services/chat/internal/app"
)

// Config wires required dependencies for the HTTP server. TrustedProxies
// controls whether forwarded headers are honored when resolving client IPs.
type Config struct {
	App            *app.App
	TrustedProxies *util.TrustedProxies
}

// Server exposes HTTP endpoints for the chat service.
type Server struct {
	app     *app.App
	proxies *util.TrustedProxies
	mux     *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:     cfg.App,
		proxies: cfg.TrustedProxies,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("chat", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/chats", s.handleChats)
	s.mux.HandleFunc("/chats/history", s.handleHistory)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.BotID == "" {
		writeError(w, http.StatusBadRequest, "botId is required")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	resp, err := s.app.HandleTurn(r.Context(), app.TurnRequest{
		BotID:        req.BotID,
		Message:      req.Message,
		WidgetKey:    r.Header.Get("X-Widget-Key"),
		ThreadID:     req.ThreadID,
		SessionToken: req.SessionToken,
		ClientIP:     util.ClientIP(r, s.proxies),
	})
	if err != nil {
		writeTurnError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	botID := r.URL.Query().Get("botId")
	if botID == "" {
		writeError(w, http.StatusBadRequest, "botId is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := s.app.History(botID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func writeTurnError(w http.ResponseWriter, err error) {
	var runErr *assistant.RunFailedError
	var subErr *assistant.SubmissionError
	switch {
	case errors.Is(err, app.ErrBotNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrBotNotActive), errors.Is(err, app.ErrBadWidgetKey):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, app.ErrInvalidSession):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, assistant.ErrRunTimeout):
		writeError(w, http.StatusGatewayTimeout, "assistant took too long to reply")
	case errors.As(err, &subErr):
		writeError(w, http.StatusBadGateway, "assistant platform unavailable")
	case errors.As(err, &runErr), errors.Is(err, assistant.ErrNoReply):
		writeError(w, http.StatusBadGateway, "assistant could not produce a reply")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

type chatRequest struct {
	BotID        string `json:"botId"`
	Message      string `json:"message"`
	ThreadID     string `json:"threadId,omitempty"`
	SessionToken string `json:"sessionToken,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
