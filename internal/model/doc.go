// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// A Message body is a Content value that serializes either as a bare JSON
// string or as an ordered array of text/image parts, matching the
// OpenAI-compatible chat-completions schema so that persisted transcripts
// feed straight back into requests. Conversations are append-only message
// lists keyed by uuid.
package model
