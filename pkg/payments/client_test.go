package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreatePreference(t *testing.T) {
	var gotReq preferenceRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/checkout/preferences" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Fatalf("authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Preference{ID: "pref-1", InitPoint: "https://pay.example/pref-1"})
	}))
	defer srv.Close()

	client, err := NewClient("token-1", srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	pref, err := client.CreatePreference(context.Background(), PreferenceSpec{
		Title:             "Pro plan",
		UnitPrice:         249.00,
		PayerEmail:        "owner@example.com",
		ExternalReference: "bot-42",
		NotificationURL:   "https://example.com/payments/webhook",
		BackURL:           "https://example.com/done",
	})
	if err != nil {
		t.Fatalf("create preference: %v", err)
	}
	if pref.InitPoint != "https://pay.example/pref-1" {
		t.Fatalf("init point = %q", pref.InitPoint)
	}
	if len(gotReq.Items) != 1 || gotReq.Items[0].UnitPrice != 249.00 || gotReq.Items[0].CurrencyID != "BRL" {
		t.Fatalf("unexpected items payload: %+v", gotReq.Items)
	}
	if gotReq.ExternalReference != "bot-42" {
		t.Fatalf("external reference = %q", gotReq.ExternalReference)
	}
	if gotReq.AutoReturn != "approved" || gotReq.BackURLs == nil {
		t.Fatalf("back urls not set: %+v", gotReq)
	}
}

func TestGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/123" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(Payment{ID: 123, Status: PaymentApproved, ExternalReference: "bot-42"})
	}))
	defer srv.Close()

	client, err := NewClient("token-1", srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	payment, err := client.GetPayment(context.Background(), "123")
	if err != nil {
		t.Fatalf("get payment: %v", err)
	}
	if payment.Status != PaymentApproved || payment.ExternalReference != "bot-42" {
		t.Fatalf("unexpected payment: %+v", payment)
	}
}

func TestAPIErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid access token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient("bad", srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.GetPayment(context.Background(), "123")
	if err == nil || err.Error() != "payments api error: invalid access token" {
		t.Fatalf("error = %v", err)
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient("   ", ""); err == nil {
		t.Fatalf("expected error for empty access token")
	}
}
