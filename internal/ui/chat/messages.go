// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aichat-tui/internal/config"
	"github.com/jeranaias/aichat-tui/internal/session"
)

// streamEventMsg wraps one session event for the update loop.
type streamEventMsg session.Event

// streamClosedMsg signals that a session's event channel drained.
type streamClosedMsg struct{}

// ConfigReloadedMsg carries a hot-reloaded configuration. Sent from
// outside the program by the config watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// SaveErrorMsg surfaces an asynchronous history save failure.
type SaveErrorMsg struct {
	Err error
}

// waitForEvent reads the next event from a session. The update loop
// re-issues it after every event until the channel closes, which keeps
// event application serialized in the single dispatch context.
func waitForEvent(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-s.Events()
		if !ok {
			return streamClosedMsg{}
		}
		return streamEventMsg(ev)
	}
}
