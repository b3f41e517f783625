package server

import (
	"encoding/json"
	"encoding/xml"
	"net/http"

	"smartbots/internal/util"
	"smartbots/services/whatsapp/internal/app"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
}

// Server exposes the WhatsApp webhook.
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
	return util.WithRequestID(util.WithRequestLog("whatsapp", util.WithSecurityHeaders(s.mux)))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/webhook", s.handleWebhook)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleWebhook answers the gateway's form post with TwiML. The gateway
// retries non-200 responses, so the webhook replies 200 with a message even
// when routing fails.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeTwiML(w, "Sorry, that message could not be read.")
		return
	}
	reply := s.app.Route(r.Context(), app.InboundMessage{
		From:        r.PostFormValue("From"),
		To:          r.PostFormValue("To"),
		Body:        r.PostFormValue("Body"),
		ProfileName: r.PostFormValue("ProfileName"),
	})
	writeTwiML(w, reply)
}

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

func writeTwiML(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(twimlResponse{Message: message})
}
