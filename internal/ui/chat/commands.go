// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aichat-tui/internal/attach"
	"github.com/jeranaias/aichat-tui/internal/config"
	"github.com/jeranaias/aichat-tui/internal/model"
	"github.com/jeranaias/aichat-tui/internal/session"
)

// =============================================================================
// SUBMIT
// =============================================================================

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())

	if m.visionConfirm {
		return m.handleVisionAnswer(text)
	}

	if strings.HasPrefix(text, "/") {
		return m.handleCommand(text)
	}

	if text == "" && len(m.pending) == 0 {
		return m, nil
	}
	if m.state == StateStreaming {
		m.setError("wait for the current response or press Esc to stop it")
		return m, nil
	}

	// Sending images to a model not marked vision-capable gets one
	// confirmation prompt first.
	if m.hasImagePending() && m.cfg.ShouldWarnAboutVision() {
		m.visionConfirm = true
		m.stagedText = text
		m.input.SetValue("")
		m.setNotice(fmt.Sprintf(
			"%s is not marked vision-capable; images may be rejected. Send anyway? (y/n/always)",
			m.cfg.API.Model))
		return m, nil
	}

	return m.send(text)
}

func (m Model) handleVisionAnswer(answer string) (tea.Model, tea.Cmd) {
	m.visionConfirm = false
	m.input.SetValue("")

	switch strings.ToLower(answer) {
	case "y", "yes":
		return m.send(m.stagedText)
	case "always":
		m.cfg.API.SkipVisionWarning = true
		if err := config.Save(m.cfg); err != nil {
			m.setError("could not persist setting: " + err.Error())
		}
		return m.send(m.stagedText)
	default:
		m.cancelVisionConfirm()
		return m, nil
	}
}

// cancelVisionConfirm backs out of the vision prompt, restoring the
// typed message so nothing is lost.
func (m *Model) cancelVisionConfirm() {
	m.visionConfirm = false
	m.input.SetValue(m.stagedText)
	m.stagedText = ""
	m.setNotice("send cancelled")
}

func (m *Model) hasImagePending() bool {
	for _, a := range m.pending {
		if a.Kind == attach.KindImage {
			return true
		}
	}
	return false
}

// send builds the outgoing message from the typed text plus staged
// attachments and starts the stream.
func (m Model) send(text string) (tea.Model, tea.Cmd) {
	var blocks strings.Builder
	var images, mediaTypes []string
	for _, a := range m.pending {
		switch a.Kind {
		case attach.KindText:
			blocks.WriteString(a.PromptBlock())
		case attach.KindImage:
			images = append(images, a.Base64)
			mediaTypes = append(mediaTypes, a.MediaType)
		}
	}
	full := text + blocks.String()

	var msg model.Message
	if len(images) > 0 {
		msg = model.NewUserMessageWithImages(full, images, mediaTypes)
	} else {
		msg = model.NewUserMessage(full)
	}

	s, err := m.coord.Send(msg)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			m.setError("a response is already streaming")
		} else {
			m.setError(err.Error())
		}
		return m, nil
	}

	m.pending = nil
	m.stagedText = ""
	m.input.SetValue("")
	m.state = StateStreaming
	m.liveText = ""
	m.errText = ""
	m.notice = ""
	m.refreshSidebar()
	m.syncViewport()
	m.viewport.GotoBottom()
	return m, tea.Batch(waitForEvent(s), m.spinner.Tick)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (m Model) handleCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]
	m.input.SetValue("")

	switch cmd {
	case "/help":
		m.setNotice("/new /rename <title> /delete /clear /attach <file>... /detach /retry /quit")
		return m, nil

	case "/new":
		m.coord.NewConversation()
		m.state = StateReady
		m.liveText = ""
		m.errText = ""
		m.notice = ""
		m.refreshSidebar()
		m.syncViewport()
		return m, nil

	case "/rename":
		if len(args) == 0 {
			m.setError("usage: /rename <title>")
			return m, nil
		}
		id := m.coord.ActiveConversation()
		if id == "" {
			m.setError("no active conversation")
			return m, nil
		}
		title := strings.Join(args, " ")
		if err := m.store.Rename(id, title); err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.setNotice("renamed to " + title)
		m.refreshSidebar()
		return m, nil

	case "/delete":
		id := m.coord.ActiveConversation()
		if id == "" {
			m.setError("no active conversation")
			return m, nil
		}
		m.coord.DeleteConversation(id)
		m.state = StateReady
		m.liveText = ""
		m.setNotice("conversation deleted")
		m.refreshSidebar()
		m.syncViewport()
		return m, nil

	case "/clear":
		m.coord.ClearAll()
		m.state = StateReady
		m.liveText = ""
		m.setNotice("all conversations cleared")
		m.refreshSidebar()
		m.syncViewport()
		return m, nil

	case "/attach":
		if len(args) == 0 {
			m.setError("usage: /attach <file> [file...]")
			return m, nil
		}
		loaded, errs := attach.LoadAll(args)
		m.pending = append(m.pending, loaded...)
		if len(errs) > 0 {
			parts := make([]string, len(errs))
			for i, e := range errs {
				parts[i] = e.Error()
			}
			m.setError(strings.Join(parts, "; "))
		} else {
			m.setNotice(fmt.Sprintf("%d file(s) attached", len(loaded)))
		}
		return m, nil

	case "/detach":
		m.pending = nil
		m.setNotice("attachments cleared")
		return m, nil

	case "/retry":
		if m.state == StateStreaming {
			m.setError("a response is already streaming")
			return m, nil
		}
		s, err := m.coord.Retry()
		if err != nil {
			m.setError(err.Error())
			return m, nil
		}
		m.state = StateStreaming
		m.liveText = ""
		m.errText = ""
		m.syncViewport()
		return m, tea.Batch(waitForEvent(s), m.spinner.Tick)

	case "/quit":
		m.coord.Shutdown()
		return m, tea.Quit
	}

	m.setError("unknown command " + cmd)
	return m, nil
}
