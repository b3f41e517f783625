package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"smartbots/internal/util"
	"smartbots/pkg/storage"
	"smartbots/services/onboarding/internal/app"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
}

// Server exposes HTTP endpoints for the onboarding service.
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
	return util.WithRequestID(util.WithRequestLog("onboarding", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/website-bots", s.handleWebsiteBots)
	s.mux.HandleFunc("/whatsapp-bots", s.handleWhatsAppBots)
	s.mux.HandleFunc("/staff-users", s.handleStaffUsers)
	s.mux.HandleFunc("/bots/", s.handleBots)
	s.mux.HandleFunc("/jobs/", s.handleJob)
	s.mux.HandleFunc("/contact", s.handleContact)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWebsiteBots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		bots, err := s.app.ListWebsiteBots()
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bots": bots})
	case http.MethodPost:
		var req app.WebsiteBotRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 32<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		result, err := s.app.CreateWebsiteBot(r.Context(), req)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleWhatsAppBots(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		bots, err := s.app.ListWhatsAppBots()
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"bots": bots})
	case http.MethodPost:
		var req app.WhatsAppBotRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 32<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		bot, err := s.app.CreateWhatsAppBot(r.Context(), req)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, bot)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleStaffUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, err := s.app.ListStaffUsers()
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	case http.MethodPost:
		var req app.StaffUserRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		user, err := s.app.CreateStaffUser(r.Context(), req)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req app.ContactRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.Contact(r.Context(), req); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// handleBots routes /bots/{id}, /bots/{id}/refresh, and /bots/{id}/documents.
func (s *Server) handleBots(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/bots/")
	parts := strings.SplitN(rest, "/", 2)
	botID := parts[0]
	if botID == "" {
		writeError(w, http.StatusNotFound, "bot id required")
		return
	}
	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}
	switch action {
	case "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		bot, err := s.app.GetWebsiteBot(botID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bot)
	case "refresh":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		job, err := s.app.ScheduleRefresh(r.Context(), botID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, job)
	case "documents":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleAddDocument(w, r, botID)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request, botID string) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field required")
		return
	}
	defer file.Close()
	data, err := storage.ReadAll(file, app.MaxDocumentBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bot, err := s.app.AddDocument(r.Context(), botID, header.Filename, data)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bot)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	jobID := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeError(w, http.StatusNotFound, "job id required")
		return
	}
	job, err := s.app.Job(r.Context(), jobID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrBotNotFound), errors.Is(err, app.ErrJobNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrInvalidDocument), errors.Is(err, app.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		// Upstream or storage failure, not the caller's fault.
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
