// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/aichat-tui/internal/util"
)

// TitleWidth is the display width a derived conversation title is truncated
// to before the ellipsis is appended.
const TitleWidth = 20

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds an ordered message list plus metadata.
//
// CreatedAt is kept as a string because older history files stored a
// "MM/DD HH:MM" display form instead of RFC 3339; the storage layer parses
// both when sorting and the raw value must survive a save/load round trip.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt string    `json:"created_at"`
}

// NewConversation creates an empty conversation with a generated id and the
// current time as its creation timestamp.
func NewConversation(title string) *Conversation {
	return &Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		Messages:  make([]Message, 0),
		CreatedAt: time.Now().Format(time.RFC3339),
	}
}

// Append adds a message to the conversation. Messages are append-only; the
// only removal path is deleting the whole conversation.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// DeriveTitle computes a title from the first user message: its display
// text flattened to one line and truncated to TitleWidth columns. Used when
// the user has not renamed the conversation.
func DeriveTitle(msg Message) string {
	text := util.CollapseWhitespace(msg.Content.DisplayText())
	if text == "" {
		if n := len(msg.Content.Images()); n > 1 {
			return "[sent images]"
		} else if n == 1 {
			return "[sent an image]"
		}
		return ""
	}
	return util.TruncateWidth(text, TitleWidth)
}
