package llmclient

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

const (
	DefaultBaseURL     = "https://api.openai.com/v1/chat/completions"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.7
)

// OpenAIClient calls an OpenAI-compatible Chat Completions API.
type OpenAIClient struct {
	http        *http.Client
	stream      *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float32
}

// Config configures NewOpenAIClient. Zero values fall back to defaults.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func NewOpenAIClient(cfg Config) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAIClient{
		http: &http.Client{Timeout: cfg.Timeout},
		// streams are bounded by the request context only
		stream:      &http.Client{},
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       cfg.Model,
		baseURL:     cfg.BaseURL,
		temperature: DefaultTemperature,
	}
}

func (c *OpenAIClient) Name() string     { return "OpenAI:" + c.model }
func (c *OpenAIClient) Configured() bool { return c.apiKey != "" }

type chatPayload struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat json.RawMessage `json:"response_format,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
}

type chatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// IsJSONObjectFormat reports whether a response_format value asks for strict
// JSON output.
func IsJSONObjectFormat(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var rf struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &rf); err != nil {
		return false
	}
	return rf.Type == "json_object"
}

func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	payload := chatPayload{
		Model:       c.model,
		Messages:    req.Messages,
		Temperature: c.temperature,
	}
	if IsJSONObjectFormat(req.ResponseFormat) {
		payload.ResponseFormat = req.ResponseFormat
	}
	resp, err := c.do(ctx, c.http, payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out chatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrNoChoices
	}
	return out.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) OpenStream(ctx context.Context, messages []Message) (io.ReadCloser, error) {
	resp, err := c.do(ctx, c.stream, chatPayload{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// do sends payload and returns the response when the status is 2xx. Other
// statuses are turned into a *ProviderError.
func (c *OpenAIClient) do(ctx context.Context, hc *http.Client, payload chatPayload) (*http.Response, error) {
	if !c.Configured() {
		return nil, ErrMissingAPIKey
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newProviderError(resp.StatusCode, body)
	}
	return resp, nil
}
