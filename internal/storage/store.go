// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jeranaias/aichat-tui/internal/model"
	"github.com/jeranaias/aichat-tui/internal/util"
)

// SchemaVersion is the on-disk document version. A document with any
// other version is discarded and the store starts fresh.
const SchemaVersion = 1

// SaveDebounce is how long writes coalesce before hitting disk. Rapid
// mutation bursts (streaming chunks finishing, renames) produce at most
// one write per window.
const SaveDebounce = 500 * time.Millisecond

// DefaultFileName is the history file under the app directory.
const DefaultFileName = "conversations.json"

// ErrNotFound is returned when a conversation ID is not in the store.
var ErrNotFound = errors.New("conversation not found")

// =============================================================================
// DOCUMENT
// =============================================================================

// document is the on-disk shape of the history file.
type document struct {
	Version       int                            `json:"version"`
	Conversations map[string]*model.Conversation `json:"conversations"`
	LastUpdated   string                         `json:"last_updated"`
}

// =============================================================================
// STORE
// =============================================================================

// Store holds every conversation and persists them to a single JSON file.
//
// Mutations mark the store dirty and schedule a debounced save; Flush
// forces any pending write synchronously. All methods are safe for
// concurrent use.
type Store struct {
	mu   sync.Mutex
	path string

	conversations map[string]*model.Conversation

	dirty     bool
	saveTimer *time.Timer
	saveErr   func(error)
}

// NewStore creates a store backed by the given file path. Nothing is
// loaded until Load is called.
func NewStore(path string) *Store {
	return &Store{
		path:          path,
		conversations: make(map[string]*model.Conversation),
	}
}

// DefaultPath returns the history file location under the user's app
// directory (~/.aichat/conversations.json).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve home directory: %w", err)
	}
	return filepath.Join(home, ".aichat", DefaultFileName), nil
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// SetSaveErrorHandler installs a callback for asynchronous save failures.
// Without one, failures are silently retried on the next mutation.
func (s *Store) SetSaveErrorHandler(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = fn
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads the history file. Returns true if existing history was
// loaded. A missing file, unreadable JSON, or a version mismatch all
// result in an empty store and false; corrupt history never prevents
// startup.
func (s *Store) Load() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("storage: unreadable history file %s: %v", s.path, err)
		return false
	}
	if doc.Version != SchemaVersion {
		log.Printf("storage: history version %d (want %d), starting fresh", doc.Version, SchemaVersion)
		return false
	}

	if doc.Conversations == nil {
		doc.Conversations = make(map[string]*model.Conversation)
	}
	// Backfill IDs for hand-edited files where the key and the embedded
	// ID disagree.
	for id, conv := range doc.Conversations {
		if conv.ID == "" {
			conv.ID = id
		}
	}

	s.conversations = doc.Conversations
	return len(s.conversations) > 0
}

// =============================================================================
// QUERIES
// =============================================================================

// Get returns a copy of the conversation with the given ID.
func (s *Store) Get(id string) (model.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return model.Conversation{}, ErrNotFound
	}
	return snapshot(conv), nil
}

// Messages returns a copy of a conversation's message list.
func (s *Store) Messages(id string) ([]model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	msgs := make([]model.Message, len(conv.Messages))
	copy(msgs, conv.Messages)
	return msgs, nil
}

// Title returns the display title for a conversation.
func (s *Store) Title(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return "", ErrNotFound
	}
	return conv.Title, nil
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// Exists reports whether a conversation ID is present.
func (s *Store) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conversations[id]
	return ok
}

// List returns copies of all conversations in creation order, newest
// first. Ordering follows SortedIDs.
func (s *Store) List() []model.Conversation {
	ids := s.SortedIDs()

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Conversation, 0, len(ids))
	for _, id := range ids {
		if conv, ok := s.conversations[id]; ok {
			out = append(out, snapshot(conv))
		}
	}
	return out
}

// snapshot deep-copies a conversation so callers cannot mutate store
// state through the returned value.
func snapshot(conv *model.Conversation) model.Conversation {
	out := *conv
	out.Messages = make([]model.Message, len(conv.Messages))
	copy(out.Messages, conv.Messages)
	return out
}

// =============================================================================
// MUTATIONS
// =============================================================================

// NewConversation creates and stores an empty conversation, returning
// its ID.
func (s *Store) NewConversation(title string) string {
	conv := model.NewConversation(title)

	s.mu.Lock()
	s.conversations[conv.ID] = conv
	s.markDirtyLocked()
	s.mu.Unlock()

	return conv.ID
}

// Append adds a message to a conversation. When the conversation has no
// title yet and the message is from the user, the title is derived from
// its content.
func (s *Store) Append(id string, msg model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return ErrNotFound
	}
	conv.Messages = append(conv.Messages, msg)
	if conv.Title == "" && msg.Role == model.RoleUser {
		conv.Title = model.DeriveTitle(msg)
	}
	s.markDirtyLocked()
	return nil
}

// Rename sets a conversation's title.
func (s *Store) Rename(id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return ErrNotFound
	}
	conv.Title = title
	s.markDirtyLocked()
	return nil
}

// Delete removes a conversation.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return ErrNotFound
	}
	delete(s.conversations, id)
	s.markDirtyLocked()
	return nil
}

// Clear removes every conversation.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.conversations = make(map[string]*model.Conversation)
	s.markDirtyLocked()
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// markDirtyLocked flags unsaved changes and arms the debounce timer.
// At most one timer is pending; further mutations within the window
// ride the existing one. Caller holds s.mu.
func (s *Store) markDirtyLocked() {
	s.dirty = true
	if s.saveTimer != nil {
		return
	}
	s.saveTimer = time.AfterFunc(SaveDebounce, func() {
		if err := s.Flush(); err != nil {
			log.Printf("storage: debounced save failed: %v", err)
			s.mu.Lock()
			handler := s.saveErr
			s.mu.Unlock()
			if handler != nil {
				handler(err)
			}
		}
	})
}

// Flush writes pending changes to disk synchronously. A no-op when the
// store is clean. Safe to call at any time, including from shutdown.
func (s *Store) Flush() error {
	s.mu.Lock()

	if s.saveTimer != nil {
		s.saveTimer.Stop()
		s.saveTimer = nil
	}
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}

	doc := document{
		Version:       SchemaVersion,
		Conversations: s.conversations,
		LastUpdated:   time.Now().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to encode history: %w", err)
	}

	// Clear the flag before releasing the lock; a concurrent mutation
	// after this point re-dirties and schedules its own save.
	s.dirty = false
	path := s.path
	s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.markFailed()
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0o644); err != nil {
		s.markFailed()
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// markFailed re-flags dirty state after a failed write so the data is
// retried on the next flush.
func (s *Store) markFailed() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}
