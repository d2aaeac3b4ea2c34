// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs streaming chat exchanges and keeps their output
// pinned to the right conversation.
//
// A Session is one in-flight request, bound at start to a conversation
// ID it never leaves; its worker goroutine publishes ordered events on a
// channel. The Coordinator holds at most one session, cancels it when
// the user navigates away, and double-checks every event (session
// pointer and bound conversation ID) before applying it, so text from a
// cancelled or superseded stream can never appear in another
// conversation.
package session
