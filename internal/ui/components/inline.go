// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/aichat-tui/internal/ui/styles"
)

// =============================================================================
// INLINE FORMATTING
// =============================================================================

// RenderInline styles prose text: `code` spans, **bold**, and *italic*.
// Control characters are stripped first so model output can never emit
// raw escape sequences into the terminal. Triple-backtick markers stay
// literal but take the inline-code style; fenced blocks are the
// segmenter's job, and during live streaming the markers are shown
// in place.
func RenderInline(text string, theme *styles.Theme) string {
	text = sanitize(text)

	var b strings.Builder
	parts := strings.Split(text, "```")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(theme.InlineCode.Render("```"))
		}
		b.WriteString(renderCodeSpans(part, theme))
	}
	return b.String()
}

// sanitize drops control characters except newline and tab.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// renderCodeSpans styles single-backtick code spans, handing the text
// between them to the emphasis pass. A span cannot cross a newline.
func renderCodeSpans(text string, theme *styles.Theme) string {
	var b strings.Builder
	for {
		start := strings.Index(text, "`")
		if start < 0 {
			b.WriteString(renderEmphasis(text, theme))
			return b.String()
		}
		rest := text[start+1:]
		end := strings.Index(rest, "`")
		nl := strings.Index(rest, "\n")
		if end < 0 || (nl >= 0 && nl < end) {
			// Unpaired backtick stays literal.
			b.WriteString(renderEmphasis(text[:start+1], theme))
			text = rest
			continue
		}
		b.WriteString(renderEmphasis(text[:start], theme))
		b.WriteString(theme.InlineCode.Render(rest[:end]))
		text = rest[end+1:]
	}
}

// renderEmphasis styles **bold** then *italic*. Bold runs first so a
// double marker is never misread as two italics.
func renderEmphasis(text string, theme *styles.Theme) string {
	text = replacePaired(text, "**", func(inner string) string {
		return theme.Bold.Render(inner)
	})
	text = replacePaired(text, "*", func(inner string) string {
		return theme.Italic.Render(inner)
	})
	return text
}

// replacePaired rewrites marker-delimited spans via render. Spans that
// cross a newline or hold only whitespace stay literal.
func replacePaired(text, marker string, render func(string) string) string {
	var b strings.Builder
	for {
		start := strings.Index(text, marker)
		if start < 0 {
			b.WriteString(text)
			return b.String()
		}
		rest := text[start+len(marker):]
		end := strings.Index(rest, marker)
		if end < 0 {
			b.WriteString(text)
			return b.String()
		}
		inner := rest[:end]
		if strings.Contains(inner, "\n") || strings.TrimSpace(inner) == "" {
			b.WriteString(text[:start+len(marker)])
			text = rest
			continue
		}
		b.WriteString(text[:start])
		b.WriteString(render(inner))
		text = rest[end+len(marker):]
	}
}
