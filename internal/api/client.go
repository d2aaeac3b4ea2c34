// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/aichat-tui/internal/model"
)

// Timeout policy for streaming requests. The overall request has no
// deadline (a long generation is normal); instead each phase is bounded
// and a silent stream is failed by the per-chunk watchdog.
const (
	// ConnectTimeout bounds TCP dial and TLS handshake.
	ConnectTimeout = 10 * time.Second

	// HeaderTimeout bounds the wait for response headers after the
	// request body is written.
	HeaderTimeout = 10 * time.Second

	// ChunkTimeout is the per-chunk read watchdog: a stream that goes
	// silent for this long is treated as failed.
	ChunkTimeout = 60 * time.Second

	// PoolIdleTimeout is how long pooled connections stay open.
	PoolIdleTimeout = 90 * time.Second
)

// PERFORMANCE: one shared client so every request reuses pooled
// connections. No Client.Timeout: streaming lifetime is context-controlled.
var sharedStreamingClient = &http.Client{
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: ConnectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   ConnectTimeout,
		ResponseHeaderTimeout: HeaderTimeout,
		ExpectContinueTimeout: ConnectTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       PoolIdleTimeout,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// Validation errors, checked with errors.Is before any request is issued.
var (
	ErrNoAPIKey   = errors.New("API key is not configured")
	ErrNoBaseURL  = errors.New("base URL is not configured")
	ErrBadBaseURL = errors.New("base URL is not a valid absolute URL")
	ErrNoModel    = errors.New("model name is not configured")
)

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to one OpenAI-compatible endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string

	httpClient *http.Client
	limiter    *rate.Limiter

	// chunkTimeout is overridable so tests can trip the watchdog quickly.
	chunkTimeout time.Duration
}

// NewClient creates a client for the given endpoint. The base URL is the
// API root (e.g. "https://api.example.com/v1"); "/chat/completions" is
// appended per request.
func NewClient(apiKey, baseURL, modelName string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      modelName,
		httpClient: sharedStreamingClient,
		// A couple of requests per second is far beyond any interactive
		// use; the limiter only guards against UI-driven request storms.
		limiter:      rate.NewLimiter(rate.Limit(2), 3),
		chunkTimeout: ChunkTimeout,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Validate checks the configuration before any request is issued.
// Configuration errors surface synchronously; the request never starts.
func (c *Client) Validate() error {
	if strings.TrimSpace(c.apiKey) == "" {
		return ErrNoAPIKey
	}
	if strings.TrimSpace(c.baseURL) == "" {
		return ErrNoBaseURL
	}
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrBadBaseURL
	}
	if strings.TrimSpace(c.model) == "" {
		return ErrNoModel
	}
	return nil
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the chat-completions request body.
type ChatRequest struct {
	Model    string          `json:"model"`
	Messages []model.Message `json:"messages"`
	Stream   bool            `json:"stream"`
}

// apiError is the error envelope OpenAI-compatible servers return.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// newStreamRequest builds the streaming POST for the given message list.
func (c *Client) newStreamRequest(ctx context.Context, messages []model.Message) (*http.Request, error) {
	body, err := json.Marshal(ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	return req, nil
}

// statusError converts a non-2xx response body into a readable error.
func statusError(status int, body []byte) error {
	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("API error (HTTP %d): %s", status, envelope.Error.Message)
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return fmt.Errorf("API error (HTTP %d): %s", status, msg)
}
