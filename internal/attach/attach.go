// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package attach

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxFileSize caps attachments; anything larger is refused rather than
// ballooning the request.
const MaxFileSize = 4 << 20

// Kind discriminates attachment types.
type Kind int

const (
	// KindText is a file sent inline as a fenced code block.
	KindText Kind = iota
	// KindImage is a file sent as base64 image content.
	KindImage
)

// Attachment is one successfully loaded file.
type Attachment struct {
	Name string
	Kind Kind

	// Text and Language are set for KindText.
	Text     string
	Language string

	// Base64 and MediaType are set for KindImage.
	Base64    string
	MediaType string
}

// imageTypes are the sniffed MIME types accepted as image attachments.
var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

// =============================================================================
// LOADING
// =============================================================================

// LoadFile reads one file and classifies it as an image or text
// attachment. Images are detected by content sniffing, not extension.
func LoadFile(path string) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("cannot read %s: %w", filepath.Base(path), err)
	}
	if info.IsDir() {
		return Attachment{}, fmt.Errorf("%s is a directory", filepath.Base(path))
	}
	if info.Size() > MaxFileSize {
		return Attachment{}, fmt.Errorf("%s is too large (%d bytes, limit %d)",
			filepath.Base(path), info.Size(), MaxFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("cannot read %s: %w", filepath.Base(path), err)
	}
	name := filepath.Base(path)

	if mediaType := sniffImage(data); mediaType != "" {
		return Attachment{
			Name:      name,
			Kind:      KindImage,
			Base64:    base64.StdEncoding.EncodeToString(data),
			MediaType: mediaType,
		}, nil
	}

	text, err := decodeText(data)
	if err != nil {
		return Attachment{}, fmt.Errorf("%s: %w", name, err)
	}
	return Attachment{
		Name:     name,
		Kind:     KindText,
		Text:     text,
		Language: languageForFile(name),
	}, nil
}

// LoadAll loads every path, isolating failures: one unreadable file
// never blocks the rest. Errors come back paired with their inputs.
func LoadAll(paths []string) ([]Attachment, []error) {
	var attachments []Attachment
	var errs []error
	for _, p := range paths {
		a, err := LoadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		attachments = append(attachments, a)
	}
	return attachments, errs
}

// sniffImage returns the image MIME type, or "" for non-images.
func sniffImage(data []byte) string {
	t := http.DetectContentType(data)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	if imageTypes[t] {
		return t
	}
	return ""
}

// =============================================================================
// PROMPT RENDERING
// =============================================================================

// fullwidthBacktick replaces backticks inside attached text so the file
// content can never terminate its own fence.
const fullwidthBacktick = "｀"

// PromptBlock renders a text attachment as a fenced block with a
// filename header, ready to append to the user's message.
func (a Attachment) PromptBlock() string {
	body := strings.ReplaceAll(a.Text, "`", fullwidthBacktick)
	var b strings.Builder
	b.WriteString("\n\nFile: ")
	b.WriteString(a.Name)
	b.WriteString("\n```")
	b.WriteString(a.Language)
	b.WriteString("\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```")
	return b.String()
}

// languageByExt maps file extensions to fence language tags.
var languageByExt = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".ts":    "typescript",
	".jsx":   "jsx",
	".tsx":   "tsx",
	".rs":    "rust",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".java":  "java",
	".kt":    "kotlin",
	".rb":    "ruby",
	".php":   "php",
	".cs":    "csharp",
	".swift": "swift",
	".sh":    "bash",
	".bash":  "bash",
	".zsh":   "bash",
	".sql":   "sql",
	".html":  "html",
	".css":   "css",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".xml":   "xml",
	".md":    "markdown",
	".txt":   "",
}

// languageForFile guesses the fence language tag from the extension.
func languageForFile(name string) string {
	return languageByExt[strings.ToLower(filepath.Ext(name))]
}
