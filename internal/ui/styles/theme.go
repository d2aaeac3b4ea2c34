// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Theme bundles the prebuilt styles the chat view renders with. Styles
// are constructed once; rendering reuses them.
type Theme struct {
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemNote     lipgloss.Style
	Timestamp      lipgloss.Style

	Body      lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Hint      lipgloss.Style
	Streaming lipgloss.Style

	SidebarTitle    lipgloss.Style
	SidebarEntry    lipgloss.Style
	SidebarSelected lipgloss.Style

	InputBorder lipgloss.Style
	StatusBar   lipgloss.Style

	InlineCode lipgloss.Style
	Bold       lipgloss.Style
	Italic     lipgloss.Style

	// CodeTheme is the chroma style name for code block highlighting.
	CodeTheme string
}

// NewTheme builds the default theme. codeTheme selects the chroma style
// for syntax highlighting; "" falls back to monokai.
func NewTheme(codeTheme string) *Theme {
	if codeTheme == "" {
		codeTheme = "monokai"
	}
	return &Theme{
		UserLabel:      lipgloss.NewStyle().Foreground(Cyan).Bold(true),
		AssistantLabel: lipgloss.NewStyle().Foreground(Purple).Bold(true),
		SystemNote:     lipgloss.NewStyle().Foreground(TextMuted).Italic(true),
		Timestamp:      lipgloss.NewStyle().Foreground(TextMuted),

		Body:      lipgloss.NewStyle().Foreground(TextPrimary),
		Error:     lipgloss.NewStyle().Foreground(Rose).Bold(true),
		Warning:   lipgloss.NewStyle().Foreground(Amber),
		Hint:      lipgloss.NewStyle().Foreground(TextMuted),
		Streaming: lipgloss.NewStyle().Foreground(TextSecondary),

		SidebarTitle:    lipgloss.NewStyle().Foreground(Purple).Bold(true).Underline(true),
		SidebarEntry:    lipgloss.NewStyle().Foreground(TextSecondary),
		SidebarSelected: lipgloss.NewStyle().Foreground(Cyan).Bold(true),

		InputBorder: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(0, 1),
		StatusBar: lipgloss.NewStyle().Foreground(TextMuted),

		InlineCode: lipgloss.NewStyle().Background(SurfaceDim).Foreground(Cyan),
		Bold:       lipgloss.NewStyle().Bold(true),
		Italic:     lipgloss.NewStyle().Italic(true),

		CodeTheme: codeTheme,
	}
}
