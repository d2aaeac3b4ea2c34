// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package segment turns raw message text into an ordered list of renderable
// text and code segments.
//
// Parsing is stateless and side-effect free. Two modes exist: ModeLive keeps
// the whole (still-arriving) text as a single text segment so half-open code
// blocks never flicker between renderings, and ModeFinal splits fenced code
// blocks out properly, repairing an unterminated trailing fence first.
// Concatenating segments (re-wrapping code in fence markers) reconstructs
// the input modulo boundary whitespace and the possible appended closing
// fence.
package segment
