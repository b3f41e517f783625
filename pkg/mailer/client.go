package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.resend.com"

// Client sends transactional email through the Resend API.
type Client struct {
	apiKey     string
	from       string
	baseURL    string
	httpClient *http.Client
}

// Message is one outbound email. HTML takes precedence over Text when both
// are set.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// NewClient constructs a client. from is the verified sender address used for
// every message. baseURL is optional and defaults to the public endpoint.
func NewClient(apiKey, from, baseURL string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("mailer api key required")
	}
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, fmt.Errorf("mailer sender address required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		from:       from,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Send delivers one message and returns the provider's message id.
func (c *Client) Send(ctx context.Context, msg Message) (string, error) {
	if strings.TrimSpace(msg.To) == "" {
		return "", fmt.Errorf("recipient address required")
	}
	payload := sendRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}
	if payload.HTML == "" {
		payload.Text = msg.Text
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Message != "" {
			return "", fmt.Errorf("mailer api error: %s", errResp.Message)
		}
		return "", fmt.Errorf("mailer api error: %s", resp.Status)
	}
	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Message string `json:"message"`
}
