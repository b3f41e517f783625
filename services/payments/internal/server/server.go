package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"smartbots/internal/util"
	"smartbots/services/payments/internal/app"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
}

// Server exposes the checkout and webhook endpoints.
type Server struct {
	app *app.App
	mux *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app: cfg.App,
		mux: http.NewServeMux(),
	}
	s.routes()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("payments", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/payments", s.handleCreateCheckout)
	s.mux.HandleFunc("/payments/webhook", s.handleWebhook)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req app.CheckoutRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := s.app.CreateCheckout(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// webhookPayload is the provider's notification body. Some notification
// variants carry the payment id in query parameters instead, so the handler
// falls back to those.
type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var payload webhookPayload
	_ = json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&payload)
	if payload.Type == "" {
		payload.Type = r.URL.Query().Get("type")
	}
	if payload.Data.ID == "" {
		payload.Data.ID = r.URL.Query().Get("data.id")
	}
	err := s.app.HandleWebhook(r.Context(), app.Notification{
		Type:   payload.Type,
		DataID: payload.Data.ID,
	})
	if err != nil {
		// Provider retries non-2xx, which is what we want when the payment
		// lookup fails.
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrUnknownReference), errors.Is(err, app.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		// Provider or storage failure, not the caller's fault.
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
