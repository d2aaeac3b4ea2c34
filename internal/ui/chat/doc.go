// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea model for the chat interface.
//
// The Update loop is the single dispatch context: stream events are
// pulled off the session channel one at a time by a self-reissuing
// command, so chunk application, conversation switches, and storage
// mutations are never concurrent. Slash commands (/new, /rename,
// /attach, ...) drive conversation management; C-l opens the
// conversation picker.
package chat
