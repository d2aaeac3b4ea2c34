// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation history to a single JSON
// document with atomic, debounced writes.
//
// Every mutation goes through the Store, which marks itself dirty and
// coalesces writes into one disk touch per debounce window. Writes go
// to a temp file first and rename into place, so a crash mid-write
// leaves the previous file intact. Flush forces a synchronous write and
// is the shutdown path.
package storage
