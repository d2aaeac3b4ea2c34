// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/aichat-tui/internal/model"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "conversations.json"))
}

func TestLoadMissingFile(t *testing.T) {
	s := tempStore(t)
	if s.Load() {
		t.Error("Load() = true for missing file, want false")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}

func TestSaveAndReload(t *testing.T) {
	s := tempStore(t)
	id := s.NewConversation("")
	if err := s.Append(id, model.NewUserMessage("hello there")); err != nil {
		t.Fatalf("Append() = %v", err)
	}
	if err := s.Append(id, model.NewAssistantMessage("hi")); err != nil {
		t.Fatalf("Append() = %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}

	reloaded := NewStore(s.path)
	if !reloaded.Load() {
		t.Fatal("Load() = false after save, want true")
	}
	conv, err := reloaded.Get(id)
	if err != nil {
		t.Fatalf("Get() = %v", err)
	}
	if conv.Title != "hello there" {
		t.Errorf("Title = %q, want derived from first user message", conv.Title)
	}
	if len(conv.Messages) != 2 {
		t.Errorf("len(Messages) = %d, want 2", len(conv.Messages))
	}
	if conv.Messages[1].Content.Text != "hi" {
		t.Errorf("assistant content = %q", conv.Messages[1].Content.Text)
	}
}

func TestSaveAndReloadPartsContent(t *testing.T) {
	s := tempStore(t)
	id := s.NewConversation("")
	msg := model.NewUserMessageWithImages("look at this", []string{"aGVsbG8="}, []string{"image/png"})
	if err := s.Append(id, msg); err != nil {
		t.Fatal(err)
	}
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}

	reloaded := NewStore(s.path)
	if !reloaded.Load() {
		t.Fatal("Load() = false after save")
	}
	msgs, err := reloaded.Messages(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 1 {
		t.Fatalf("len(msgs) = %d, want 1", len(msgs))
	}
	before, _ := json.Marshal(msg)
	after, _ := json.Marshal(msgs[0])
	if string(before) != string(after) {
		t.Errorf("parts content changed across reload:\n before %s\n after  %s", before, after)
	}
}

func TestLoadVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	doc := map[string]any{
		"version": 99,
		"conversations": map[string]any{
			"abc": map[string]any{"id": "abc", "title": "t", "messages": []any{}},
		},
	}
	data, _ := json.Marshal(doc)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path)
	if s.Load() {
		t.Error("Load() = true for version mismatch, want fresh start")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after version mismatch, want 0", s.Len())
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path)
	if s.Load() {
		t.Error("Load() = true for corrupt file, want false")
	}
}

func TestDebouncedSaveCoalesces(t *testing.T) {
	s := tempStore(t)
	id := s.NewConversation("burst")
	for i := 0; i < 10; i++ {
		if err := s.Append(id, model.NewUserMessage("m")); err != nil {
			t.Fatal(err)
		}
	}

	// Nothing on disk inside the debounce window.
	if _, err := os.Stat(s.path); !errors.Is(err, os.ErrNotExist) {
		t.Error("file written before debounce elapsed")
	}

	deadline := time.Now().Add(3 * SaveDebounce)
	for {
		if _, err := os.Stat(s.path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced save never fired")
		}
		time.Sleep(10 * time.Millisecond)
	}

	reloaded := NewStore(s.path)
	if !reloaded.Load() {
		t.Fatal("Load() = false")
	}
	msgs, err := reloaded.Messages(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 10 {
		t.Errorf("len(msgs) = %d, want all 10 from the burst", len(msgs))
	}
}

func TestFlushCleanIsNoop(t *testing.T) {
	s := tempStore(t)
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() on clean store = %v", err)
	}
	if _, err := os.Stat(s.path); !errors.Is(err, os.ErrNotExist) {
		t.Error("clean flush wrote a file")
	}
}

func TestRenameDeleteClear(t *testing.T) {
	s := tempStore(t)
	a := s.NewConversation("first")
	b := s.NewConversation("second")

	if err := s.Rename(a, "renamed"); err != nil {
		t.Fatal(err)
	}
	title, err := s.Title(a)
	if err != nil || title != "renamed" {
		t.Errorf("Title = %q, %v", title, err)
	}

	if err := s.Delete(b); err != nil {
		t.Fatal(err)
	}
	if s.Exists(b) {
		t.Error("deleted conversation still exists")
	}
	if err := s.Delete(b); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete = %v, want ErrNotFound", err)
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", s.Len())
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempStore(t)
	s.NewConversation("x")
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(filepath.Dir(s.path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir contents = %v, want only the history file", names)
	}
}
