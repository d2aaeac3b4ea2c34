// aichat TUI - a terminal chat client for OpenAI-compatible APIs.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jeranaias/aichat-tui/internal/api"
	"github.com/jeranaias/aichat-tui/internal/config"
	"github.com/jeranaias/aichat-tui/internal/session"
	"github.com/jeranaias/aichat-tui/internal/storage"
	"github.com/jeranaias/aichat-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--version", "-v":
			fmt.Printf("aichat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
			return
		case "--help", "-h":
			printUsage()
			return
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "aichat is interactive and requires a terminal")
		os.Exit(1)
	}
	lipgloss.SetColorProfile(termenv.ColorProfile())

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.EnsureDir(); err != nil {
		return err
	}
	setupLogging()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		path, _ := config.Path()
		return fmt.Errorf("%w\n\nEdit %s or set the AICHAT_* environment variables", err, path)
	}

	historyPath, err := storage.DefaultPath()
	if err != nil {
		return err
	}
	store := storage.NewStore(historyPath)
	store.Load()

	client := api.NewClient(cfg.API.Key, cfg.API.BaseURL, cfg.API.Model)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coord := session.NewCoordinator(ctx, client, store, cfg.SystemPrompt())
	program := tea.NewProgram(chat.New(cfg, coord, store), tea.WithAltScreen())

	// Async save failures and config hot reloads enter the UI as
	// messages so they are handled in the dispatch loop.
	store.SetSaveErrorHandler(func(err error) {
		program.Send(chat.SaveErrorMsg{Err: err})
	})
	cfgPath, err := config.Path()
	if err == nil {
		go config.Watch(ctx, cfgPath, func(c *config.Config) {
			program.Send(chat.ConfigReloadedMsg{Config: c})
		})
	}

	if _, err := program.Run(); err != nil {
		// History may hold unsaved exchanges even when the UI dies.
		store.Flush()
		return err
	}
	return store.Flush()
}

// setupLogging sends diagnostics to a file under the app directory. The
// TUI owns the terminal, so stderr logging would corrupt the display.
func setupLogging() {
	dir, err := config.Dir()
	if err != nil {
		log.SetOutput(os.Stderr)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "aichat.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(f)
}

func printUsage() {
	fmt.Print(`aichat - terminal chat client for OpenAI-compatible APIs

Usage:
  aichat            start the chat interface
  aichat --version  print version and exit

Configuration lives in ~/.aichat/config.toml (api key, base URL, model).
Environment overrides: AICHAT_API_KEY, AICHAT_BASE_URL, AICHAT_MODEL.

In-app commands:
  /new /rename <title> /delete /clear /attach <file>... /retry /quit
`)
}
