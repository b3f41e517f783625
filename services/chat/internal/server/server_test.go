package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartbots/internal/widgettoken"
	"smartbots/pkg/assistant"
	"smartbots/pkg/auth"
	"smartbots/pkg/domain"
	"smartbots/pkg/store"
	"smartbots/services/chat/internal/app"
)

type fakeRunner struct {
	reply string
	err   error
	calls int
}

func (f *fakeRunner) RunTurn(_ context.Context, threadID, _, _ string) (string, string, error) {
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	if threadID == "" {
		threadID = "thread-new"
	}
	return threadID, f.reply, nil
}

type allowAll struct{}

func (allowAll) Allow(string) bool { return true }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func newTestServer(t *testing.T, runner app.TurnRunner, limiter app.Limiter) (*Server, *store.MemoryStore, *widgettoken.Manager, string) {
	t.Helper()
	dataStore := store.NewMemoryStore()

	widgetKey, err := auth.NewWidgetKey()
	if err != nil {
		t.Fatalf("new widget key: %v", err)
	}
	hash, err := auth.HashKey(widgetKey)
	if err != nil {
		t.Fatalf("hash widget key: %v", err)
	}
	if err := dataStore.SaveWebsiteBot(domain.WebsiteBot{
		ID:            "bot-1",
		CompanyName:   "Acme",
		AssistantID:   "asst-1",
		WidgetKeyHash: hash,
		Status:        domain.StatusActive,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		t.Fatalf("save bot: %v", err)
	}

	tokens, err := widgettoken.NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	appCore, err := app.New(app.Config{
		Store:   dataStore,
		Runner:  runner,
		Tokens:  tokens,
		Limiter: limiter,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return New(Config{App: appCore}), dataStore, tokens, widgetKey
}

func postChat(t *testing.T, srv *Server, widgetKey string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if widgetKey != "" {
		req.Header.Set("X-Widget-Key", widgetKey)
	}
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func TestChatTurnSuccess(t *testing.T) {
	runner := &fakeRunner{reply: "We open at 9am."}
	srv, dataStore, tokens, widgetKey := newTestServer(t, runner, allowAll{})

	rr := postChat(t, srv, widgetKey, map[string]string{"botId": "bot-1", "message": "When do you open?"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	var resp app.TurnResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "We open at 9am." || resp.ThreadID != "thread-new" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	claims, err := tokens.Verify(resp.SessionToken)
	if err != nil {
		t.Fatalf("session token invalid: %v", err)
	}
	if claims.BotID != "bot-1" || claims.ThreadID != "thread-new" {
		t.Fatalf("session claims = %+v", claims)
	}

	records, err := dataStore.ListChatRecords("bot-1", 10)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 || records[0].BotReply != "We open at 9am." {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Channel != domain.ChannelWebsite {
		t.Fatalf("channel = %s", records[0].Channel)
	}
}

func TestChatTurnReusesSessionThread(t *testing.T) {
	runner := &fakeRunner{reply: "still here"}
	srv, _, tokens, widgetKey := newTestServer(t, runner, allowAll{})

	token, err := tokens.Issue("bot-1", "thread-77")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rr := postChat(t, srv, widgetKey, map[string]string{
		"botId":        "bot-1",
		"message":      "hi again",
		"sessionToken": token,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rr.Code, rr.Body.String())
	}
	var resp app.TurnResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	if resp.ThreadID != "thread-77" {
		t.Fatalf("thread id = %q, want the session's thread", resp.ThreadID)
	}
}

func TestChatTurnRejectsForeignSession(t *testing.T) {
	runner := &fakeRunner{reply: "unused"}
	srv, _, tokens, widgetKey := newTestServer(t, runner, allowAll{})

	token, err := tokens.Issue("other-bot", "thread-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rr := postChat(t, srv, widgetKey, map[string]string{
		"botId":        "bot-1",
		"message":      "hi",
		"sessionToken": token,
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
	if runner.calls != 0 {
		t.Fatalf("runner must not be called for a foreign session")
	}
}

func TestChatTurnUnknownBot(t *testing.T) {
	srv, _, _, widgetKey := newTestServer(t, &fakeRunner{reply: "x"}, allowAll{})
	rr := postChat(t, srv, widgetKey, map[string]string{"botId": "missing", "message": "hi"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestChatTurnSuspendedBot(t *testing.T) {
	srv, dataStore, _, widgetKey := newTestServer(t, &fakeRunner{reply: "x"}, allowAll{})
	if err := dataStore.SetWebsiteBotStatus("bot-1", domain.StatusSuspended); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	rr := postChat(t, srv, widgetKey, map[string]string{"botId": "bot-1", "message": "hi"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
}

func TestChatTurnWrongWidgetKey(t *testing.T) {
	srv, _, _, _ := newTestServer(t, &fakeRunner{reply: "x"}, allowAll{})
	rr := postChat(t, srv, "wk_wrong", map[string]string{"botId": "bot-1", "message": "hi"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rr.Code)
	}
}

func TestChatTurnRateLimited(t *testing.T) {
	srv, _, _, widgetKey := newTestServer(t, &fakeRunner{reply: "x"}, denyAll{})
	rr := postChat(t, srv, widgetKey, map[string]string{"botId": "bot-1", "message": "hi"})
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}
}

func TestChatTurnValidation(t *testing.T) {
	srv, _, _, widgetKey := newTestServer(t, &fakeRunner{reply: "x"}, allowAll{})
	if rr := postChat(t, srv, widgetKey, map[string]string{"message": "hi"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing botId: status = %d", rr.Code)
	}
	if rr := postChat(t, srv, widgetKey, map[string]string{"botId": "bot-1"}); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing message: status = %d", rr.Code)
	}
}

func TestChatTurnPlatformUnavailable(t *testing.T) {
	runner := &fakeRunner{err: &assistant.SubmissionError{Op: "create thread", Err: errors.New("connection refused")}}
	srv, _, _, widgetKey := newTestServer(t, runner, allowAll{})
	rr := postChat(t, srv, widgetKey, map[string]string{"botId": "bot-1", "message": "hi"})
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502 when the assistant platform is down", rr.Code)
	}
}

func TestChatTurnUnexpectedRunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	srv, _, _, widgetKey := newTestServer(t, runner, allowAll{})
	rr := postChat(t, srv, widgetKey, map[string]string{"botId": "bot-1", "message": "hi"})
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 for an unexpected failure", rr.Code)
	}
}

func TestChatHistory(t *testing.T) {
	srv, dataStore, _, _ := newTestServer(t, &fakeRunner{reply: "x"}, allowAll{})
	_ = dataStore.AppendChatRecord(domain.ChatRecord{ID: "r1", BotID: "bot-1", UserMessage: "q", BotReply: "a"})

	req := httptest.NewRequest(http.MethodGet, "/chats/history?botId=bot-1", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Records []domain.ChatRecord `json:"records"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Records) != 1 || resp.Records[0].ID != "r1" {
		t.Fatalf("records = %+v", resp.Records)
	}
}
