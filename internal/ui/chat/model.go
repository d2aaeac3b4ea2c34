// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aichat-tui/internal/attach"
	"github.com/jeranaias/aichat-tui/internal/config"
	"github.com/jeranaias/aichat-tui/internal/session"
	"github.com/jeranaias/aichat-tui/internal/storage"
	"github.com/jeranaias/aichat-tui/internal/ui/styles"
)

// State represents what the chat view is currently doing.
type State int

const (
	// StateReady accepts input.
	StateReady State = iota
	// StateStreaming is receiving a response.
	StateStreaming
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view. All mutation happens
// in Update; session events enter as messages, so conversation state is
// only ever touched from the single dispatch context.
type Model struct {
	cfg   *config.Config
	coord *session.Coordinator
	store *storage.Store

	theme *styles.Theme
	keys  KeyMap

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	width  int
	height int
	ready  bool

	state State
	// liveText is the in-progress assistant reply for the active
	// conversation. Rendered in live mode; cleared when the stream
	// settles into storage.
	liveText string

	errText string
	notice  string

	// Sidebar (conversation picker) state.
	sidebarOpen bool
	sidebarIDs  []string
	sidebarIdx  int

	// Attachments staged for the next send.
	pending []attach.Attachment
	// visionConfirm is set while waiting for the user to confirm
	// sending images to a model not marked vision-capable; stagedText
	// holds the typed message until they answer.
	visionConfirm bool
	stagedText    string
}

// New creates the chat model.
func New(cfg *config.Config, coord *session.Coordinator, store *storage.Store) Model {
	input := textinput.New()
	input.Placeholder = "Type a message, or /help"
	input.Prompt = "> "
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	return Model{
		cfg:     cfg,
		coord:   coord,
		store:   store,
		theme:   styles.NewTheme(cfg.UI.Theme),
		keys:    DefaultKeyMap(),
		input:   input,
		spinner: sp,
		state:   StateReady,
	}
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// refreshSidebar re-reads the conversation list, keeping the selection
// on the active conversation where possible.
func (m *Model) refreshSidebar() {
	m.sidebarIDs = m.store.SortedIDs()
	m.sidebarIdx = 0
	for i, id := range m.sidebarIDs {
		if id == m.coord.ActiveConversation() {
			m.sidebarIdx = i
			break
		}
	}
}

// setNotice shows a transient status line, replacing any error.
func (m *Model) setNotice(text string) {
	m.notice = text
	m.errText = ""
}

// setError shows an error line, replacing any notice.
func (m *Model) setError(text string) {
	m.errText = text
	m.notice = ""
}
