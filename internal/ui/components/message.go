// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/aichat-tui/internal/segment"
	"github.com/jeranaias/aichat-tui/internal/ui/styles"
)

// RenderMessageBody renders message text for the transcript. Finished
// messages are split into prose and highlighted code blocks; text still
// streaming stays a single inline-formatted run so half-open fences
// never flicker between renderings.
func RenderMessageBody(text string, live bool, theme *styles.Theme, width int) string {
	mode := segment.ModeFinal
	if live {
		mode = segment.ModeLive
	}

	segments := segment.Parse(text, mode)
	if len(segments) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(segments))
	for _, s := range segments {
		switch s.Kind {
		case segment.KindCode:
			cb := NewCodeBlock(s.Language, s.Content, theme.CodeTheme)
			if width > 0 {
				cb.MaxWidth = width
			}
			rendered = append(rendered, cb.Render())
		default:
			rendered = append(rendered, RenderInline(s.Content, theme))
		}
	}
	return strings.Join(rendered, "\n")
}
