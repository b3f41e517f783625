package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"smartbots/pkg/domain"
	"smartbots/pkg/store"
	"smartbots/services/whatsapp/internal/app"
)

type fakeRunner struct {
	reply string
	err   error
	calls int

	lastThread    string
	lastAssistant string
}

func (f *fakeRunner) RunTurn(_ context.Context, threadID, assistantID, _ string) (string, string, error) {
	f.calls++
	f.lastThread = threadID
	f.lastAssistant = assistantID
	if f.err != nil {
		return "", "", f.err
	}
	if threadID == "" {
		threadID = "thread-new"
	}
	return threadID, f.reply, nil
}

func newTestServer(t *testing.T, runner app.TurnRunner) (*Server, *store.MemoryStore) {
	t.Helper()
	dataStore := store.NewMemoryStore()
	if err := dataStore.SaveWhatsAppBot(domain.WhatsAppBot{
		ID:          "wabot-1",
		CompanyName: "Acme",
		AssistantID: "asst-wa",
		PhoneNumber: "+5511999990000",
		Status:      domain.StatusActive,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("save bot: %v", err)
	}
	if err := dataStore.SaveStaffUser(domain.StaffUser{
		ID:          "staff-1",
		Name:        "Joana",
		AssistantID: "asst-staff",
		PhoneNumber: "+5511888880000",
		Status:      domain.StatusActive,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("save staff user: %v", err)
	}
	appCore, err := app.New(app.Config{Store: dataStore, Runner: runner})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return New(Config{App: appCore}), dataStore
}

func postWebhook(t *testing.T, srv *Server, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func TestWebhookCommercialBotReply(t *testing.T) {
	runner := &fakeRunner{reply: "We deliver on weekdays."}
	srv, dataStore := newTestServer(t, runner)

	rr := postWebhook(t, srv, url.Values{
		"From": {"whatsapp:+5511777770000"},
		"To":   {"whatsapp:+5511999990000"},
		"Body": {"Do you deliver?"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/xml" {
		t.Fatalf("content type = %q", ct)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "<Response><Message>We deliver on weekdays.</Message></Response>") {
		t.Fatalf("body = %s", body)
	}
	if runner.lastAssistant != "asst-wa" {
		t.Fatalf("assistant = %q", runner.lastAssistant)
	}

	records, err := dataStore.ListChatRecords("wabot-1", 10)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 || records[0].PhoneNumber != "+5511777770000" {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Channel != domain.ChannelWhatsApp {
		t.Fatalf("channel = %s", records[0].Channel)
	}
}

func TestWebhookCommercialBotReusesThread(t *testing.T) {
	runner := &fakeRunner{reply: "Yes, still open."}
	srv, dataStore := newTestServer(t, runner)
	_ = dataStore.AppendChatRecord(domain.ChatRecord{
		ID:          "r1",
		BotID:       "wabot-1",
		Channel:     domain.ChannelWhatsApp,
		ThreadID:    "thread-earlier",
		PhoneNumber: "+5511777770000",
	})

	rr := postWebhook(t, srv, url.Values{
		"From": {"whatsapp:+5511777770000"},
		"To":   {"whatsapp:+5511999990000"},
		"Body": {"Still open?"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if runner.lastThread != "thread-earlier" {
		t.Fatalf("thread = %q, want the caller's earlier thread", runner.lastThread)
	}
}

func TestWebhookStaffReplyCachesThread(t *testing.T) {
	runner := &fakeRunner{reply: "Your meeting is at 3pm."}
	srv, dataStore := newTestServer(t, runner)

	rr := postWebhook(t, srv, url.Values{
		"From": {"whatsapp:+5511888880000"},
		"To":   {"whatsapp:+5511000000000"},
		"Body": {"When is my meeting?"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Your meeting is at 3pm.") {
		t.Fatalf("body = %s", rr.Body.String())
	}
	if runner.lastAssistant != "asst-staff" {
		t.Fatalf("assistant = %q", runner.lastAssistant)
	}

	user, ok, err := dataStore.GetStaffUser("staff-1")
	if err != nil || !ok {
		t.Fatalf("get staff user: ok=%v err=%v", ok, err)
	}
	if user.ThreadID != "thread-new" {
		t.Fatalf("cached thread = %q", user.ThreadID)
	}
	hist, err := dataStore.ListStaffHistory("staff-1", 10)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(hist) != 1 || hist[0].BotReply != "Your meeting is at 3pm." {
		t.Fatalf("history = %+v", hist)
	}
}

func TestWebhookUnknownSenderGetsWelcome(t *testing.T) {
	runner := &fakeRunner{reply: "unused"}
	srv, _ := newTestServer(t, runner)

	rr := postWebhook(t, srv, url.Values{
		"From":        {"whatsapp:+5511666660000"},
		"To":          {"whatsapp:+5511000000000"},
		"Body":        {"hello?"},
		"ProfileName": {"Carlos"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Hi Carlos!") {
		t.Fatalf("body = %s", rr.Body.String())
	}
	if runner.calls != 0 {
		t.Fatalf("runner must not be called for unknown senders")
	}
}

func TestWebhookSuspendedBot(t *testing.T) {
	runner := &fakeRunner{reply: "unused"}
	srv, dataStore := newTestServer(t, runner)
	if err := dataStore.SetWhatsAppBotStatus("wabot-1", domain.StatusSuspended); err != nil {
		t.Fatalf("suspend: %v", err)
	}

	rr := postWebhook(t, srv, url.Values{
		"From": {"whatsapp:+5511777770000"},
		"To":   {"whatsapp:+5511999990000"},
		"Body": {"hi"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even for inactive bots", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not active yet") {
		t.Fatalf("body = %s", rr.Body.String())
	}
	if runner.calls != 0 {
		t.Fatalf("runner must not be called for inactive bots")
	}
}

func TestWebhookRunnerFailureStillReplies(t *testing.T) {
	runner := &fakeRunner{err: errors.New("platform down")}
	srv, _ := newTestServer(t, runner)

	rr := postWebhook(t, srv, url.Values{
		"From": {"whatsapp:+5511777770000"},
		"To":   {"whatsapp:+5511999990000"},
		"Body": {"hi"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 on failure", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "could not process your message") {
		t.Fatalf("body = %s", rr.Body.String())
	}
}

func TestWebhookEscapesReply(t *testing.T) {
	runner := &fakeRunner{reply: `Use <b>bold</b> & "quotes"`}
	srv, _ := newTestServer(t, runner)

	rr := postWebhook(t, srv, url.Values{
		"From": {"whatsapp:+5511777770000"},
		"To":   {"whatsapp:+5511999990000"},
		"Body": {"formatting?"},
	})
	body := rr.Body.String()
	if strings.Contains(body, "<b>") {
		t.Fatalf("reply not escaped: %s", body)
	}
	if !strings.Contains(body, "&lt;b&gt;bold&lt;/b&gt;") {
		t.Fatalf("body = %s", body)
	}
}
