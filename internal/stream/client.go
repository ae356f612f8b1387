// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

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

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultBaseURL is the local assistant endpoint.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultTimeout for non-streaming requests.
	DefaultTimeout = 30 * time.Second

	// StreamTimeout for streaming requests (longer for slow generations).
	StreamTimeout = 10 * time.Minute
)

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the assistant chat endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewClient creates a client for the given endpoint and model.
func NewClient(baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: StreamTimeout,
		},
	}
}

// Model returns the model name requests are issued for.
func (c *Client) Model() string {
	return c.model
}

// SetModel changes the model used for subsequent requests.
func (c *Client) SetModel(model string) {
	c.model = model
}

// ChatStream sends the conversation and streams events back through the
// callback. It blocks until the stream finishes, fails, or ctx is
// cancelled. All returned errors are *TransportError.
func (c *Client) ChatStream(ctx context.Context, messages []Message, tools []ToolSchema, callback EventCallback) error {
	req := ChatRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
		Stream:   true,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return &TransportError{Class: ClassGeneric, Message: fmt.Sprintf("encode request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return &TransportError{Class: ClassGeneric, Message: err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ClassifyErr(ctx.Err())
		}
		return ClassifyErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Bounded read keeps a hostile body from blowing up memory.
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ClassifyStatus(resp.StatusCode, string(raw))
	}

	if err := NewEventReader(resp.Body).Process(ctx, callback); err != nil {
		return ClassifyErr(err)
	}
	return nil
}

// Ping checks whether the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return &TransportError{Class: ClassGeneric, Message: err.Error()}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ClassifyErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ClassifyStatus(resp.StatusCode, "")
	}
	return nil
}
