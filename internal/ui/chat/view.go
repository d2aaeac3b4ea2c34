// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aichat-tui/internal/model"
	"github.com/jeranaias/aichat-tui/internal/ui/components"
	"github.com/jeranaias/aichat-tui/internal/util"
)

// Fixed chrome heights: bordered input box and the status line.
const (
	inputHeight  = 3
	statusHeight = 2
)

// View renders the full frame.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}
	if m.sidebarOpen {
		return m.renderSidebar()
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.theme.InputBorder.Width(m.width - 2).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

// syncViewport rebuilds the transcript into the viewport.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func (m Model) renderTranscript() string {
	id := m.coord.ActiveConversation()
	if id == "" {
		return m.theme.Hint.Render("No conversation yet. Type a message to start one, or press C-l to browse history.")
	}

	msgs, err := m.store.Messages(id)
	if err != nil {
		return m.theme.Error.Render(err.Error())
	}

	width := m.viewport.Width
	var b strings.Builder
	for _, msg := range msgs {
		b.WriteString(m.renderOneMessage(msg, width))
		b.WriteString("\n\n")
	}

	if m.state == StateStreaming {
		b.WriteString(m.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName()))
		b.WriteString(" ")
		b.WriteString(m.spinner.View())
		b.WriteString("\n")
		if m.liveText != "" {
			b.WriteString(components.RenderMessageBody(m.liveText, true, m.theme, width))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderOneMessage(msg model.Message, width int) string {
	var label string
	switch msg.Role {
	case model.RoleUser:
		label = m.theme.UserLabel.Render(msg.Role.DisplayName())
	case model.RoleAssistant:
		label = m.theme.AssistantLabel.Render(msg.Role.DisplayName())
	default:
		label = m.theme.SystemNote.Render(msg.Role.DisplayName())
	}

	body := components.RenderMessageBody(msg.Content.DisplayText(), false, m.theme, width)
	if n := len(msg.Content.Images()); n > 0 {
		tag := m.theme.Hint.Render(fmt.Sprintf("[%d image(s) attached]", n))
		if body == "" {
			body = tag
		} else {
			body = body + "\n" + tag
		}
	}
	return label + "\n" + body
}

// =============================================================================
// STATUS LINE
// =============================================================================

func (m Model) renderStatus() string {
	var left string
	switch {
	case m.errText != "":
		left = m.theme.Error.Render(m.errText)
	case m.notice != "":
		left = m.theme.Warning.Render(m.notice)
	case m.state == StateStreaming:
		left = m.theme.Streaming.Render("streaming... Esc to stop")
	default:
		left = m.theme.Hint.Render("Enter send · C-n new · C-l conversations · C-c quit")
	}

	right := m.theme.StatusBar.Render(m.cfg.API.Model)
	if n := len(m.pending); n > 0 {
		right = m.theme.Warning.Render(fmt.Sprintf("%d attachment(s) · ", n)) + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar() string {
	var b strings.Builder
	b.WriteString(m.theme.SidebarTitle.Render("Conversations"))
	b.WriteString("\n\n")

	if len(m.sidebarIDs) == 0 {
		b.WriteString(m.theme.Hint.Render("No saved conversations."))
	}

	for i, id := range m.sidebarIDs {
		conv, err := m.store.Get(id)
		if err != nil {
			continue
		}
		title := conv.Title
		if title == "" {
			title = "(untitled)"
		}
		title = util.TruncateWidth(title, 40)
		line := fmt.Sprintf("%s  %s", title, m.theme.Timestamp.Render(conv.CreatedAt))
		if i == m.sidebarIdx {
			b.WriteString(m.theme.SidebarSelected.Render("> " + line))
		} else {
			b.WriteString(m.theme.SidebarEntry.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.Hint.Render("Enter open · d delete · Esc close"))
	return b.String()
}
