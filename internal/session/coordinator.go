// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jeranaias/aichat-tui/internal/api"
	"github.com/jeranaias/aichat-tui/internal/model"
	"github.com/jeranaias/aichat-tui/internal/segment"
	"github.com/jeranaias/aichat-tui/internal/storage"
)

// ErrBusy is returned when a send is attempted while a stream is already
// in flight for the active conversation.
var ErrBusy = errors.New("a response is already streaming")

// ShutdownWait bounds how long shutdown waits for an in-flight worker to
// unwind after cancellation.
const ShutdownWait = 3 * time.Second

// Update is the coordinator's answer to one stream event: what the UI
// should now show for the event's conversation.
type Update struct {
	ConversationID string
	// Text is the full accumulated assistant text so far (repaired on
	// completion, empty after a failure since partial replies are
	// discarded).
	Text string
	// Done is set on the terminal event of a stream.
	Done bool
	// Err is set when the stream failed.
	Err error
	// Stale marks an event from a superseded or switched-away session.
	// Stale updates must not touch the display.
	Stale bool
}

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator owns the single in-flight streaming session and routes its
// events to conversation state. It enforces session affinity two ways:
// switching conversations cancels the active session, and every incoming
// event is checked against both the current session pointer and the
// active conversation ID before it is applied. Either check alone would
// suffice on the happy path; both are kept so a late event can never
// land in the wrong conversation.
//
// The coordinator is not safe for concurrent use. It is owned by the UI
// event loop and every method must be called from there.
type Coordinator struct {
	ctx    context.Context
	client *api.Client
	store  *storage.Store

	systemPrompt string

	active   *Session
	activeID string
	buf      strings.Builder
}

// NewCoordinator creates a coordinator. systemPrompt, when non-empty, is
// prepended to every request as a system message; it is never stored in
// conversation history.
func NewCoordinator(ctx context.Context, client *api.Client, store *storage.Store, systemPrompt string) *Coordinator {
	return &Coordinator{
		ctx:          ctx,
		client:       client,
		store:        store,
		systemPrompt: systemPrompt,
	}
}

// ApplyConfig swaps the client and system prompt used for subsequent
// sends. An in-flight stream keeps the client it started with.
func (c *Coordinator) ApplyConfig(client *api.Client, systemPrompt string) {
	c.client = client
	c.systemPrompt = systemPrompt
}

// ActiveConversation returns the conversation currently on screen, or ""
// when none is selected.
func (c *Coordinator) ActiveConversation() string {
	return c.activeID
}

// Busy reports whether a stream is in flight.
func (c *Coordinator) Busy() bool {
	return c.active != nil
}

// ActiveSession returns the in-flight session, or nil.
func (c *Coordinator) ActiveSession() *Session {
	return c.active
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// NewConversation creates an empty conversation and makes it active.
// Any in-flight stream is cancelled first.
func (c *Coordinator) NewConversation() string {
	c.CancelActive()
	id := c.store.NewConversation("")
	c.activeID = id
	return id
}

// SwitchConversation makes the given conversation active. An in-flight
// stream for the previous conversation is cancelled and its partial
// text discarded.
func (c *Coordinator) SwitchConversation(id string) {
	if id == c.activeID {
		return
	}
	c.CancelActive()
	c.activeID = id
}

// DeleteConversation removes a conversation. If it is the active one,
// any in-flight stream is cancelled first.
func (c *Coordinator) DeleteConversation(id string) error {
	if c.active != nil && (id == c.activeID || id == c.active.ConversationID()) {
		c.CancelActive()
	}
	if err := c.store.Delete(id); err != nil {
		return err
	}
	if id == c.activeID {
		c.activeID = ""
	}
	return nil
}

// ClearAll removes every conversation, discarding any in-flight stream.
func (c *Coordinator) ClearAll() {
	c.CancelActive()
	c.store.Clear()
	c.activeID = ""
}

// =============================================================================
// SENDING
// =============================================================================

// Send appends the user message to the active conversation and starts a
// streaming session bound to it. The in-progress reply lives only in
// the session buffer and the UI's view state; nothing reaches the store
// until the stream completes. Returns the session whose events the
// caller must pump into HandleEvent.
func (c *Coordinator) Send(msg model.Message) (*Session, error) {
	if c.active != nil {
		return nil, ErrBusy
	}
	if c.activeID == "" {
		c.activeID = c.store.NewConversation("")
	}

	if err := c.store.Append(c.activeID, msg); err != nil {
		return nil, err
	}

	history, err := c.store.Messages(c.activeID)
	if err != nil {
		return nil, err
	}
	if c.systemPrompt != "" {
		history = append([]model.Message{model.NewSystemMessage(c.systemPrompt)}, history...)
	}

	c.buf.Reset()
	c.active = Start(c.ctx, c.client, c.activeID, history)
	return c.active, nil
}

// Retry re-sends the active conversation's history after a failed
// exchange. The conversation must already end with a user message.
func (c *Coordinator) Retry() (*Session, error) {
	if c.active != nil {
		return nil, ErrBusy
	}
	if c.activeID == "" {
		return nil, storage.ErrNotFound
	}

	history, err := c.store.Messages(c.activeID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 || history[len(history)-1].Role != model.RoleUser {
		return nil, errors.New("nothing to retry")
	}
	if c.systemPrompt != "" {
		history = append([]model.Message{model.NewSystemMessage(c.systemPrompt)}, history...)
	}

	c.buf.Reset()
	c.active = Start(c.ctx, c.client, c.activeID, history)
	return c.active, nil
}

// =============================================================================
// EVENT HANDLING
// =============================================================================

// HandleEvent applies one stream event. Events from a session other than
// the current one, or bound to a conversation other than the active one,
// are reported stale and otherwise ignored.
func (c *Coordinator) HandleEvent(ev Event) Update {
	if ev.Session != c.active || ev.ConversationID != c.activeID {
		return Update{ConversationID: ev.ConversationID, Stale: true}
	}

	switch ev.Kind {
	case EventChunk:
		c.buf.WriteString(ev.Delta)
		return Update{
			ConversationID: ev.ConversationID,
			Text:           c.buf.String(),
		}

	case EventComplete:
		text := c.settleActive()
		return Update{
			ConversationID: ev.ConversationID,
			Text:           text,
			Done:           true,
		}

	case EventFailed:
		c.discardActive()
		return Update{
			ConversationID: ev.ConversationID,
			Done:           true,
			Err:            ev.Err,
		}
	}

	return Update{ConversationID: ev.ConversationID, Stale: true}
}

// CancelActive stops the in-flight stream, if any, discarding whatever
// partial text has arrived. Partial replies are never persisted.
func (c *Coordinator) CancelActive() {
	if c.active == nil {
		return
	}
	c.active.Cancel()
	c.discardActive()
}

// settleActive finalizes a completed stream into storage. Non-empty
// accumulated text has its fence markers balanced and is appended as
// the assistant message; the repaired text is canonical from here on.
// An exchange that produced no text appends nothing. Returns the
// settled text.
func (c *Coordinator) settleActive() string {
	if c.active == nil {
		return ""
	}
	id := c.active.ConversationID()
	text := c.buf.String()
	c.active = nil
	c.buf.Reset()

	if strings.TrimSpace(text) == "" {
		return ""
	}

	repaired, _ := segment.RepairFences(text)
	c.store.Append(id, model.NewAssistantMessage(repaired))
	return repaired
}

// discardActive clears the in-flight state without touching storage.
func (c *Coordinator) discardActive() {
	c.active = nil
	c.buf.Reset()
}

// =============================================================================
// SHUTDOWN
// =============================================================================

// Shutdown cancels any in-flight stream, waits a bounded time for the
// worker to unwind, and flushes pending history to disk. The flush
// happens even if the worker wait times out.
func (c *Coordinator) Shutdown() error {
	if c.active != nil {
		done := c.active.Done()
		c.CancelActive()
		select {
		case <-done:
		case <-time.After(ShutdownWait):
		}
	}
	return c.store.Flush()
}
