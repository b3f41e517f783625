package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.mercadopago.com"

// Payment statuses reported by the provider. Only approved activates a bot.
const (
	PaymentApproved = "approved"
	PaymentPending  = "pending"
	PaymentRejected = "rejected"
)

// Client calls the Mercado Pago checkout API.
type Client struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// PreferenceSpec describes a checkout preference to create. ExternalReference
// carries the bot id so the webhook can match the payment back.
type PreferenceSpec struct {
	Title             string
	Description       string
	UnitPrice         float64
	CurrencyID        string
	PayerEmail        string
	ExternalReference string
	NotificationURL   string
	BackURL           string
}

// Preference is a created checkout preference. InitPoint is the hosted
// checkout URL handed to the customer.
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// Payment is the provider's record of a single payment.
type Payment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
}

// NewClient constructs a client with the provided access token. baseURL is
// optional and defaults to the public endpoint.
func NewClient(accessToken, baseURL string) (*Client, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("payments access token required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		accessToken: accessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// CreatePreference creates a hosted checkout preference for one subscription
// charge.
func (c *Client) CreatePreference(ctx context.Context, spec PreferenceSpec) (Preference, error) {
	currency := spec.CurrencyID
	if currency == "" {
		currency = "BRL"
	}
	payload := preferenceRequest{
		Items: []preferenceItem{{
			Title:       spec.Title,
			Description: spec.Description,
			Quantity:    1,
			UnitPrice:   spec.UnitPrice,
			CurrencyID:  currency,
		}},
		ExternalReference: spec.ExternalReference,
		NotificationURL:   spec.NotificationURL,
	}
	if spec.PayerEmail != "" {
		payload.Payer = &preferencePayer{Email: spec.PayerEmail}
	}
	if spec.BackURL != "" {
		payload.BackURLs = &backURLs{Success: spec.BackURL, Pending: spec.BackURL, Failure: spec.BackURL}
		payload.AutoReturn = "approved"
	}
	var pref Preference
	if err := c.doJSON(ctx, http.MethodPost, "/checkout/preferences", payload, &pref); err != nil {
		return Preference{}, err
	}
	return pref, nil
}

// GetPayment fetches a payment by the id reported in a webhook notification.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (Payment, error) {
	var payment Payment
	if err := c.doJSON(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &payment); err != nil {
		return Payment{}, err
	}
	return payment, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Message != "" {
			return fmt.Errorf("payments api error: %s", errResp.Message)
		}
		return fmt.Errorf("payments api error: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type preferenceItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyID  string  `json:"currency_id"`
}

type preferencePayer struct {
	Email string `json:"email"`
}

type backURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

type preferenceRequest struct {
	Items             []preferenceItem `json:"items"`
	Payer             *preferencePayer `json:"payer,omitempty"`
	BackURLs          *backURLs        `json:"back_urls,omitempty"`
	AutoReturn        string           `json:"auto_return,omitempty"`
	ExternalReference string           `json:"external_reference,omitempty"`
	NotificationURL   string           `json:"notification_url,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}
