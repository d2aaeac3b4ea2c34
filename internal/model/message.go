// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// CONTENT PARTS
// =============================================================================

// Part types for multi-part message content (OpenAI-compatible schema).
const (
	PartTypeText  = "text"
	PartTypeImage = "image_url"
)

// ImageURL wraps a data URL carrying base64 image bytes.
type ImageURL struct {
	URL string `json:"url"`
}

// Part is one element of a multi-part message content array.
type Part struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// NewTextPart creates a text content part.
func NewTextPart(text string) Part {
	return Part{Type: PartTypeText, Text: text}
}

// NewImagePart creates an image content part from base64 data and a media
// type such as "image/png". The payload is embedded as a data URL, which is
// the form the chat-completions wire schema expects.
func NewImagePart(base64Data, mediaType string) Part {
	return Part{
		Type:     PartTypeImage,
		ImageURL: &ImageURL{URL: "data:" + mediaType + ";base64," + base64Data},
	}
}

// Base64Data extracts the base64 payload from an image part's data URL.
// Returns "" for non-image parts or malformed URLs.
func (p Part) Base64Data() string {
	if p.Type != PartTypeImage || p.ImageURL == nil {
		return ""
	}
	url := p.ImageURL.URL
	if !strings.HasPrefix(url, "data:image") {
		return ""
	}
	idx := strings.Index(url, ";base64,")
	if idx < 0 {
		return ""
	}
	return url[idx+len(";base64,"):]
}

// =============================================================================
// CONTENT
// =============================================================================

// Content is a message body: either a plain string or an ordered sequence of
// parts. It marshals as a bare JSON string when no parts are present and as
// a parts array otherwise, so persisted transcripts round-trip directly into
// subsequent API requests.
type Content struct {
	Text  string
	Parts []Part
}

// TextContent creates plain string content.
func TextContent(text string) Content {
	return Content{Text: text}
}

// PartsContent creates multi-part content. A user message carrying images
// always takes this form, even when the text part is absent.
func PartsContent(parts []Part) Content {
	return Content{Parts: parts}
}

// IsParts reports whether the content uses the part-sequence form.
func (c Content) IsParts() bool {
	return c.Parts != nil
}

// DisplayText returns the text to render: the plain string, or the first
// text part of a parts array.
func (c Content) DisplayText() string {
	if !c.IsParts() {
		return c.Text
	}
	for _, p := range c.Parts {
		if p.Type == PartTypeText {
			return p.Text
		}
	}
	return ""
}

// Images returns the base64 payloads of all image parts, in order.
func (c Content) Images() []string {
	var images []string
	for _, p := range c.Parts {
		if data := p.Base64Data(); data != "" {
			images = append(images, data)
		}
	}
	return images
}

// MarshalJSON emits a bare string or a parts array.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.IsParts() {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON accepts both the string and the parts-array form.
func (c *Content) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		c.Text = text
		c.Parts = nil
		return nil
	}
	var parts []Part
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("message content is neither string nor parts array: %w", err)
	}
	c.Text = ""
	c.Parts = parts
	return nil
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation. Messages are
// immutable once appended to a conversation; a streaming assistant reply
// lives only in transient session state until the stream completes.
type Message struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// NewUserMessage creates a user message with plain text content.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: TextContent(text)}
}

// NewUserMessageWithImages creates a user message in parts form: an optional
// text part followed by one image part per base64 payload.
func NewUserMessageWithImages(text string, images []string, mediaTypes []string) Message {
	parts := make([]Part, 0, len(images)+1)
	if text != "" {
		parts = append(parts, NewTextPart(text))
	}
	for i, img := range images {
		mediaType := "image/png"
		if i < len(mediaTypes) && mediaTypes[i] != "" {
			mediaType = mediaTypes[i]
		}
		parts = append(parts, NewImagePart(img, mediaType))
	}
	return Message{Role: RoleUser, Content: PartsContent(parts)}
}

// NewAssistantMessage creates an assistant message with plain text content.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: TextContent(text)}
}

// NewSystemMessage creates a system message. System messages are injected
// transiently at request time and never persisted.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: TextContent(text)}
}
