package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSend(t *testing.T) {
	var gotReq sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Fatalf("authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(sendResponse{ID: "email-1"})
	}))
	defer srv.Close()

	client, err := NewClient("key-1", "bots@example.com", srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	id, err := client.Send(context.Background(), Message{
		To:      "owner@example.com",
		Subject: "Your bot is live",
		HTML:    "<p>All set.</p>",
		Text:    "All set.",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "email-1" {
		t.Fatalf("id = %q", id)
	}
	if gotReq.From != "bots@example.com" || len(gotReq.To) != 1 || gotReq.To[0] != "owner@example.com" {
		t.Fatalf("unexpected addressing: %+v", gotReq)
	}
	if gotReq.HTML == "" || gotReq.Text != "" {
		t.Fatalf("html should take precedence over text: %+v", gotReq)
	}
}

func TestSendRequiresRecipient(t *testing.T) {
	client, err := NewClient("key-1", "bots@example.com", "http://unused.invalid")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Fatalf("expected error for missing recipient")
	}
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"domain not verified"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client, err := NewClient("key-1", "bots@example.com", srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Send(context.Background(), Message{To: "a@b.c", Subject: "x", Text: "y"})
	if err == nil || err.Error() != "mailer api error: domain not verified" {
		t.Fatalf("error = %v", err)
	}
}
