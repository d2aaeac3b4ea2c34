// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jeranaias/aichat-tui/internal/model"
)

// ErrStreamTimeout is surfaced when no chunk arrives within the watchdog
// window (the connection is alive but the server has gone silent).
var ErrStreamTimeout = errors.New("stream timed out waiting for the next chunk")

// =============================================================================
// STREAM CHUNK
// =============================================================================

// StreamChunk is one parsed SSE event from a chat-completions stream.
type StreamChunk struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
			Role    string `json:"role,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Content returns the delta text from the first choice.
func (c *StreamChunk) Content() string {
	if len(c.Choices) > 0 {
		return c.Choices[0].Delta.Content
	}
	return ""
}

// IsDone returns true if the chunk carries a finish reason.
func (c *StreamChunk) IsDone() bool {
	return len(c.Choices) > 0 && c.Choices[0].FinishReason != ""
}

// StreamCallback receives each delta in receipt order.
type StreamCallback func(delta string)

// =============================================================================
// SSE READER
// =============================================================================

// sseReader parses Server-Sent Events from a response body.
type sseReader struct {
	reader *bufio.Reader
}

func newSSEReader(r io.Reader) *sseReader {
	return &sseReader{reader: bufio.NewReader(r)}
}

// readEvent returns the data payload of the next SSE event, or io.EOF at
// end of stream. Non-data fields (event:, id:, retry:, comments) are
// ignored; multi-line data is joined with newlines.
func (s *sseReader) readEvent() ([]byte, error) {
	var dataLines [][]byte

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF && len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			return nil, err
		}

		line = bytes.TrimRight(line, "\r\n")

		// Blank line terminates the event.
		if len(line) == 0 {
			if len(dataLines) > 0 {
				return bytes.Join(dataLines, []byte("\n")), nil
			}
			continue
		}

		if bytes.HasPrefix(line, []byte("data:")) {
			dataLines = append(dataLines, bytes.TrimSpace(line[5:]))
		}
	}
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream performs a streaming chat completion, invoking the callback
// for each delta in receipt order with no batching or coalescing. It
// returns nil when the stream ends normally ("[DONE]", a finish reason, or
// EOF) and an error otherwise. Cancel via the context.
func (c *Client) ChatStream(ctx context.Context, messages []model.Message, callback StreamCallback) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := c.newStreamRequest(ctx, messages)
	if err != nil {
		return err
	}

	// The watchdog cancels the in-flight request if the stream goes
	// silent. It is distinct from the caller's context so a timeout can
	// be reported as ErrStreamTimeout rather than a bare cancellation.
	watchCtx, watchCancel := context.WithCancel(ctx)
	defer watchCancel()
	req = req.WithContext(watchCtx)

	watchdog := time.AfterFunc(c.chunkTimeout, watchCancel)
	defer watchdog.Stop()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if watchCtx.Err() != nil && ctx.Err() == nil {
			return ErrStreamTimeout
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return statusError(resp.StatusCode, body)
	}

	reader := newSSEReader(resp.Body)
	for {
		data, err := reader.readEvent()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if watchCtx.Err() != nil {
				return ErrStreamTimeout
			}
			return fmt.Errorf("stream read failed: %w", err)
		}
		watchdog.Reset(c.chunkTimeout)

		if bytes.Equal(data, []byte("[DONE]")) {
			return nil
		}

		var chunk StreamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			// Skip malformed chunks rather than aborting the stream.
			continue
		}

		if delta := chunk.Content(); delta != "" {
			callback(delta)
		}
		if chunk.IsDone() {
			return nil
		}
	}
}
