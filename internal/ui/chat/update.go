// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aichat-tui/internal/api"
	"github.com/jeranaias/aichat-tui/internal/session"
	"github.com/jeranaias/aichat-tui/internal/ui/styles"
)

// Update is the single dispatch context: every state change, including
// stream events arriving from the worker goroutine, is applied here.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case spinner.TickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case streamEventMsg:
		return m.handleStreamEvent(session.Event(msg))

	case streamClosedMsg:
		return m, nil

	case ConfigReloadedMsg:
		m.cfg = msg.Config
		// The next send picks up the new endpoint and prompt; an
		// in-flight stream keeps the client it started with.
		m.coord.ApplyConfig(
			api.NewClient(msg.Config.API.Key, msg.Config.API.BaseURL, msg.Config.API.Model),
			msg.Config.SystemPrompt(),
		)
		m.theme = styles.NewTheme(msg.Config.UI.Theme)
		m.setNotice("configuration reloaded")
		m.syncViewport()
		return m, nil

	case SaveErrorMsg:
		m.setError("failed to save history: " + msg.Err.Error())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// STREAM EVENTS
// =============================================================================

func (m Model) handleStreamEvent(ev session.Event) (tea.Model, tea.Cmd) {
	update := m.coord.HandleEvent(ev)

	// Keep draining the originating session even when its events are
	// stale; the channel closes once its worker exits.
	cmd := waitForEvent(ev.Session)

	if update.Stale {
		return m, cmd
	}

	if !update.Done {
		m.liveText = update.Text
		m.syncViewport()
		m.viewport.GotoBottom()
		return m, cmd
	}

	m.state = StateReady
	m.liveText = ""
	if update.Err != nil {
		m.setError(update.Err.Error())
	} else {
		m.notice = ""
	}
	m.refreshSidebar()
	m.syncViewport()
	m.viewport.GotoBottom()
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.sidebarOpen {
		return m.handleSidebarKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.coord.Shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.state == StateStreaming {
			m.coord.CancelActive()
			m.state = StateReady
			m.liveText = ""
			m.setNotice("stopped")
			m.syncViewport()
		} else if m.visionConfirm {
			m.cancelVisionConfirm()
		}
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		m.coord.NewConversation()
		m.state = StateReady
		m.liveText = ""
		m.errText = ""
		m.notice = ""
		m.refreshSidebar()
		m.syncViewport()
		return m, nil

	case key.Matches(msg, m.keys.Sidebar):
		m.sidebarOpen = true
		m.refreshSidebar()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.sidebarIdx > 0 {
			m.sidebarIdx--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.sidebarIdx < len(m.sidebarIDs)-1 {
			m.sidebarIdx++
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.sidebarIdx < len(m.sidebarIDs) {
			m.coord.SwitchConversation(m.sidebarIDs[m.sidebarIdx])
			m.state = StateReady
			m.liveText = ""
			m.errText = ""
		}
		m.sidebarOpen = false
		m.syncViewport()
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if m.sidebarIdx < len(m.sidebarIDs) {
			id := m.sidebarIDs[m.sidebarIdx]
			if id == m.coord.ActiveConversation() {
				m.state = StateReady
				m.liveText = ""
			}
			m.coord.DeleteConversation(id)
			m.refreshSidebar()
			m.syncViewport()
		}
		return m, nil

	case key.Matches(msg, m.keys.ClosePanel):
		m.sidebarOpen = false
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		m.coord.Shutdown()
		return m, tea.Quit
	}
	return m, nil
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	// Transcript gets everything above the input box and status line.
	vpHeight := msg.Height - inputHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}
	m.input.Width = msg.Width - 6

	m.syncViewport()
	m.viewport.GotoBottom()
	return m
}
