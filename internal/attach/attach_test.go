// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package attach

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// tinyPNG is a 1x1 transparent PNG.
var tinyPNG = mustDecode("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

func mustDecode(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTextFile(t *testing.T) {
	path := writeFile(t, "main.go", []byte("package main\n"))
	a, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v", err)
	}
	if a.Kind != KindText {
		t.Fatalf("Kind = %v, want KindText", a.Kind)
	}
	if a.Language != "go" {
		t.Errorf("Language = %q, want go", a.Language)
	}
	if a.Text != "package main\n" {
		t.Errorf("Text = %q", a.Text)
	}
}

func TestLoadImageBySniffing(t *testing.T) {
	// Extension lies; content wins.
	path := writeFile(t, "screenshot.txt", tinyPNG)
	a, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v", err)
	}
	if a.Kind != KindImage {
		t.Fatalf("Kind = %v, want KindImage", a.Kind)
	}
	if a.MediaType != "image/png" {
		t.Errorf("MediaType = %q", a.MediaType)
	}
	if decoded := mustDecode(a.Base64); string(decoded) != string(tinyPNG) {
		t.Error("Base64 does not round-trip")
	}
}

func TestLoadGBKFallback(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("你好，世界"))
	if err != nil {
		t.Fatal(err)
	}
	path := writeFile(t, "notes.txt", gbk)
	a, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v", err)
	}
	if a.Text != "你好，世界" {
		t.Errorf("Text = %q, want decoded GBK", a.Text)
	}
}

func TestLoadBinaryRejected(t *testing.T) {
	path := writeFile(t, "blob.bin", []byte{0x00, 0x01, 0x02, 0xff, 0xfe})
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() = nil for binary content, want error")
	}
}

func TestLoadAllIsolatesFailures(t *testing.T) {
	good := writeFile(t, "ok.txt", []byte("fine"))
	attachments, errs := LoadAll([]string{good, filepath.Join(t.TempDir(), "missing.txt")})
	if len(attachments) != 1 {
		t.Errorf("len(attachments) = %d, want 1", len(attachments))
	}
	if len(errs) != 1 {
		t.Errorf("len(errs) = %d, want 1", len(errs))
	}
}

func TestPromptBlockEscapesBackticks(t *testing.T) {
	a := Attachment{
		Name:     "README.md",
		Kind:     KindText,
		Text:     "Use `go build`.\n```\nnested fence\n```\n",
		Language: "markdown",
	}
	block := a.PromptBlock()

	// The outer fence opens and closes exactly once; nothing inside can
	// terminate it early.
	inner := strings.TrimPrefix(block, "\n\nFile: README.md\n```markdown\n")
	inner = strings.TrimSuffix(inner, "```")
	if strings.Contains(inner, "```") {
		t.Errorf("content fence leaked into prompt block:\n%s", block)
	}
	if !strings.Contains(inner, "｀｀｀") {
		t.Error("backticks not substituted with fullwidth form")
	}
	if strings.Count(block, "```") != 2 {
		t.Errorf("fence marker count = %d, want 2", strings.Count(block, "```"))
	}
}

func TestPromptBlockAddsTrailingNewline(t *testing.T) {
	a := Attachment{Name: "x.txt", Text: "no newline at end"}
	if !strings.HasSuffix(a.PromptBlock(), "\n```") {
		t.Errorf("PromptBlock() = %q", a.PromptBlock())
	}
}

func TestLoadDirectoryRejected(t *testing.T) {
	if _, err := LoadFile(t.TempDir()); err == nil {
		t.Error("LoadFile() = nil for directory, want error")
	}
}

func TestLanguageForFile(t *testing.T) {
	tests := []struct{ name, want string }{
		{"app.PY", "python"},
		{"query.sql", "sql"},
		{"Makefile", ""},
		{"style.css", "css"},
	}
	for _, tt := range tests {
		if got := languageForFile(tt.name); got != tt.want {
			t.Errorf("languageForFile(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
