// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attach loads files for inclusion in chat messages.
//
// Images are detected by content sniffing and carried as base64 data
// URLs; everything else is decoded to UTF-8 (with charset fallbacks for
// common East Asian encodings) and rendered as a fenced code block.
// Backticks inside attached text are swapped for their fullwidth
// lookalike so the content cannot break out of its fence. Loading
// multiple files isolates failures per file.
package attach
