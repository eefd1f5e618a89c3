// Package gatewayclient is the browser-side caller of the gateway's chat
// endpoints.
package gatewayclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	llmclient "repoprep/internal/llm/client"
	"repoprep/internal/llm/stream"
	"repoprep/internal/util/jsonutil"
)

const (
	DefaultBaseURL = "http://localhost:8081"

	chatPath       = "/api/chat"
	chatStreamPath = "/api/chat-stream"
	maxErrorBody   = 2048
)

// Error is a non-2xx gateway answer to /api/chat.
type Error struct {
	Status     int
	Message    string
	RetryAfter int
}

func (e *Error) Error() string { return e.Message }

// RateLimited reports whether the gateway rejected the call with 429.
func (e *Error) RateLimited() bool { return e.Status == http.StatusTooManyRequests }

type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the client used for both endpoints.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
		c.stream = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 90 * time.Second},
		// streams are bounded by the caller's context
		stream: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, path string, body any) (*http.Request, error) {
	b, err := jsonutil.MarshalNoEscape(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// Chat calls /api/chat and returns the completion content.
func (c *Client) Chat(ctx context.Context, req llmclient.ChatRequest) (string, error) {
	hreq, err := c.newRequest(ctx, chatPath, req)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(hreq)
	if err != nil {
		return "", fmt.Errorf("gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", decodeError(resp)
	}
	var out struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gateway: decode response: %w", err)
	}
	return out.Content, nil
}

// ChatStream calls /api/chat-stream and decodes the event stream, calling fn
// per fragment. A non-2xx answer fails with *stream.StatusError before any
// fragment; cancellation of ctx yields stream.ErrAborted.
func (c *Client) ChatStream(ctx context.Context, messages []llmclient.Message, fn stream.FragmentFunc) (string, error) {
	hreq, err := c.newRequest(ctx, chatStreamPath, llmclient.ChatRequest{Messages: messages})
	if err != nil {
		return "", err
	}
	hreq.Header.Set("Accept", "text/event-stream")
	return stream.NewDecoder(fn).Do(ctx, c.stream, hreq)
}

func decodeError(resp *http.Response) *Error {
	e := &Error{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var parsed struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		e.Message = fmt.Sprintf("Server Error: %d", resp.StatusCode)
		return e
	}
	e.Message = parsed.Error
	e.RetryAfter = parsed.RetryAfter
	if e.Message == "" {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
