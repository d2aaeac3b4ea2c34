// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"

	"github.com/jeranaias/aichat-tui/internal/api"
	"github.com/jeranaias/aichat-tui/internal/model"
)

// EventKind discriminates stream events.
type EventKind int

const (
	// EventChunk carries one delta of assistant text.
	EventChunk EventKind = iota
	// EventComplete marks a normally finished stream.
	EventComplete
	// EventFailed marks a stream that ended with an error.
	EventFailed
)

// Event is one occurrence on a streaming session. Every event names its
// origin session and the conversation it is bound to so consumers can
// discard events from sessions that are no longer current.
type Event struct {
	Session        *Session
	ConversationID string
	Kind           EventKind
	Delta          string
	Err            error
}

// =============================================================================
// SESSION
// =============================================================================

// Session is one in-flight streaming request, permanently bound to the
// conversation it was started for. Events arrive on Events() in stream
// order; the channel closes after the terminal event.
type Session struct {
	conversationID string

	events chan Event
	done   chan struct{}

	cancel     context.CancelFunc
	cancelOnce sync.Once
}

// Start launches a streaming request for the given conversation and
// message history. The worker goroutine exits when the stream ends, the
// session is cancelled, or the parent context is done.
func Start(ctx context.Context, client *api.Client, conversationID string, messages []model.Message) *Session {
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		conversationID: conversationID,
		events:         make(chan Event, 64),
		done:           make(chan struct{}),
		cancel:         cancel,
	}

	go func() {
		defer close(s.done)
		defer close(s.events)
		defer cancel()

		err := client.ChatStream(ctx, messages, func(delta string) {
			s.emit(ctx, Event{
				Session:        s,
				ConversationID: conversationID,
				Kind:           EventChunk,
				Delta:          delta,
			})
		})

		terminal := Event{
			Session:        s,
			ConversationID: conversationID,
			Kind:           EventComplete,
		}
		if err != nil && ctx.Err() == nil {
			terminal.Kind = EventFailed
			terminal.Err = err
		}
		s.emit(ctx, terminal)
	}()

	return s
}

// emit delivers an event unless the session has been cancelled, in which
// case the event is dropped and the worker can unwind without a reader.
func (s *Session) emit(ctx context.Context, ev Event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

// ConversationID returns the conversation this session is bound to. The
// binding is fixed at start and never changes.
func (s *Session) ConversationID() string {
	return s.conversationID
}

// Events returns the ordered event stream. Closed after the terminal
// event or on cancellation.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Cancel stops the in-flight request. Idempotent; safe from any
// goroutine. Events already buffered may still be read but carry a
// session pointer consumers will recognize as stale.
func (s *Session) Cancel() {
	s.cancelOnce.Do(s.cancel)
}

// Done is closed when the worker goroutine has fully exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}
