package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Run statuses reported by the assistant platform. queued and in_progress are
// pollable; everything else is terminal.
const (
	RunStatusQueued     = "queued"
	RunStatusInProgress = "in_progress"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
	RunStatusCancelled  = "cancelled"
	RunStatusExpired    = "expired"
)

// Client calls the assistant platform (OpenAI assistants v2 wire format).
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Run identifies one asynchronous processing job on a thread.
type Run struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// AssistantSpec describes an assistant to create.
type AssistantSpec struct {
	Name         string
	Instructions string
	Model        string
	FileIDs      []string
}

// NewClient constructs a client with the provided API key. baseURL is
// optional and defaults to the public platform endpoint.
func NewClient(apiKey, baseURL string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("assistant api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// CreateThread allocates a new conversation thread and returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var resp idResponse
	if err := c.doJSON(ctx, http.MethodPost, "/threads", struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// AddMessage appends a message to a thread.
func (c *Client) AddMessage(ctx context.Context, threadID, role, content string) error {
	payload := map[string]string{"role": role, "content": content}
	return c.doJSON(ctx, http.MethodPost, "/threads/"+threadID+"/messages", payload, nil)
}

// CreateRun starts a processing job for the assistant on the thread.
func (c *Client) CreateRun(ctx context.Context, threadID, assistantID string) (Run, error) {
	payload := map[string]string{"assistant_id": assistantID}
	var run Run
	if err := c.doJSON(ctx, http.MethodPost, "/threads/"+threadID+"/runs", payload, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// GetRun fetches the current status of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (Run, error) {
	var run Run
	if err := c.doJSON(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// LatestMessage returns the text of the most recent message on the thread.
// An empty string means the thread has no readable message content.
func (c *Client) LatestMessage(ctx context.Context, threadID string) (string, error) {
	var resp messagesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/threads/"+threadID+"/messages?limit=1&order=desc", nil, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Content) == 0 {
		return "", nil
	}
	return resp.Data[0].Content[0].Text.Value, nil
}

// CreateAssistant provisions an assistant, optionally bound to knowledge files
// through the file_search tool.
func (c *Client) CreateAssistant(ctx context.Context, spec AssistantSpec) (string, error) {
	payload := assistantRequest{
		Name:         spec.Name,
		Instructions: spec.Instructions,
		Model:        spec.Model,
		Tools:        []tool{{Type: "file_search"}},
	}
	if len(spec.FileIDs) > 0 {
		payload.ToolResources = &toolResources{
			FileSearch: &fileSearchResources{
				VectorStores: []vectorStore{{FileIDs: spec.FileIDs}},
			},
		}
	}
	var resp idResponse
	if err := c.doJSON(ctx, http.MethodPost, "/assistants", payload, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// ReplaceAssistantFiles points an existing assistant at a new set of
// knowledge files.
func (c *Client) ReplaceAssistantFiles(ctx context.Context, assistantID string, fileIDs []string) error {
	payload := assistantRequest{
		ToolResources: &toolResources{
			FileSearch: &fileSearchResources{
				VectorStores: []vectorStore{{FileIDs: fileIDs}},
			},
		},
	}
	return c.doJSON(ctx, http.MethodPost, "/assistants/"+assistantID, payload, nil)
}

// UploadFile uploads a knowledge document (purpose=assistants) and returns
// its file id.
func (c *Client) UploadFile(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("purpose", "assistants"); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuthHeaders(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", decodeAPIError(resp)
	}
	var out idResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.ID, nil
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
	c.setAuthHeaders(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
}

func decodeAPIError(resp *http.Response) error {
	var errResp errorResponse
	_ = json.NewDecoder(resp.Body).Decode(&errResp)
	if errResp.Error.Message != "" {
		return fmt.Errorf("assistant api error: %s", errResp.Error.Message)
	}
	return fmt.Errorf("assistant api error: %s", resp.Status)
}

type idResponse struct {
	ID string `json:"id"`
}

type tool struct {
	Type string `json:"type"`
}

type vectorStore struct {
	FileIDs []string `json:"file_ids"`
}

type fileSearchResources struct {
	VectorStores []vectorStore `json:"vector_stores,omitempty"`
}

type toolResources struct {
	FileSearch *fileSearchResources `json:"file_search,omitempty"`
}

type assistantRequest struct {
	Name          string         `json:"name,omitempty"`
	Instructions  string         `json:"instructions,omitempty"`
	Model         string         `json:"model,omitempty"`
	Tools         []tool         `json:"tools,omitempty"`
	ToolResources *toolResources `json:"tool_resources,omitempty"`
}

type messagesResponse struct {
	Data []struct {
		Content []struct {
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
