// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestContentMarshalString(t *testing.T) {
	msg := NewUserMessage("hello")
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	// Plain text marshals as a bare string, matching the wire schema for
	// text-only messages.
	want := `{"role":"user","content":"hello"}`
	if string(data) != want {
		t.Errorf("marshaled = %s, want %s", data, want)
	}
}

func TestContentMarshalParts(t *testing.T) {
	msg := NewUserMessageWithImages("look", []string{"QUJD"}, []string{"image/jpeg"})
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.Contains(s, `"type":"text"`) || !strings.Contains(s, `"type":"image_url"`) {
		t.Errorf("marshaled = %s", s)
	}
	if !strings.Contains(s, "data:image/jpeg;base64,QUJD") {
		t.Errorf("image data URL missing: %s", s)
	}
}

func TestContentUnmarshalBothForms(t *testing.T) {
	var fromString Content
	if err := json.Unmarshal([]byte(`"plain"`), &fromString); err != nil {
		t.Fatal(err)
	}
	if fromString.IsParts() || fromString.Text != "plain" {
		t.Errorf("fromString = %+v", fromString)
	}

	var fromParts Content
	raw := `[{"type":"text","text":"caption"},{"type":"image_url","image_url":{"url":"data:image/png;base64,QUJD"}}]`
	if err := json.Unmarshal([]byte(raw), &fromParts); err != nil {
		t.Fatal(err)
	}
	if !fromParts.IsParts() {
		t.Fatal("parts form not detected")
	}
	if fromParts.DisplayText() != "caption" {
		t.Errorf("DisplayText() = %q", fromParts.DisplayText())
	}
	images := fromParts.Images()
	if len(images) != 1 || images[0] != "QUJD" {
		t.Errorf("Images() = %v", images)
	}
}

func TestContentUnmarshalRejectsOtherShapes(t *testing.T) {
	var c Content
	if err := json.Unmarshal([]byte(`{"nested":"object"}`), &c); err == nil {
		t.Error("Unmarshal accepted an object content")
	}
}

func TestContentRoundTrip(t *testing.T) {
	original := NewUserMessageWithImages("caption", []string{"QUJD"}, nil)
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}
	var restored Message
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatal(err)
	}
	if restored.Content.DisplayText() != "caption" {
		t.Errorf("DisplayText() = %q", restored.Content.DisplayText())
	}
	if imgs := restored.Content.Images(); len(imgs) != 1 || imgs[0] != "QUJD" {
		t.Errorf("Images() = %v", imgs)
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"short text", NewUserMessage("hello world"), "hello world"},
		{"multi-line flattened", NewUserMessage("first line\nsecond"), "first line second"},
		{"long text truncated", NewUserMessage(strings.Repeat("a", 40)), strings.Repeat("a", 17) + "..."},
		{"image only", NewUserMessageWithImages("", []string{"QUJD"}, nil), "[sent an image]"},
		{"two images", NewUserMessageWithImages("", []string{"QUJD", "REVG"}, nil), "[sent images]"},
		{"text with image uses text", NewUserMessageWithImages("see this", []string{"QUJD"}, nil), "see this"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.msg); got != tt.want {
				t.Errorf("DeriveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewConversation(t *testing.T) {
	a := NewConversation("one")
	b := NewConversation("two")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("IDs not unique: %q, %q", a.ID, b.ID)
	}
	if !a.IsEmpty() {
		t.Error("new conversation not empty")
	}
	a.Append(NewUserMessage("hi"))
	if a.MessageCount() != 1 {
		t.Errorf("MessageCount() = %d", a.MessageCount())
	}
}

func TestRoleDisplayName(t *testing.T) {
	if RoleUser.DisplayName() != "You" || RoleAssistant.DisplayName() != "Assistant" {
		t.Error("unexpected role display names")
	}
}

func TestPartBase64Data(t *testing.T) {
	p := NewImagePart("QUJD", "image/png")
	if p.Base64Data() != "QUJD" {
		t.Errorf("Base64Data() = %q", p.Base64Data())
	}
	if (Part{Type: PartTypeText, Text: "x"}).Base64Data() != "" {
		t.Error("text part returned image data")
	}
	malformed := Part{Type: PartTypeImage, ImageURL: &ImageURL{URL: "https://example.com/a.png"}}
	if malformed.Base64Data() != "" {
		t.Error("non-data URL returned image data")
	}
}
