// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the aichat TUI:
// atomic file writes and Unicode-aware string truncation.
//
// AtomicWriteFile is the persistence primitive used by the conversation
// store; the truncation helpers keep titles and previews from corrupting
// multi-byte characters or overflowing the sidebar.
package util
