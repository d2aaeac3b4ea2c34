// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package segment

import "strings"

// RepairFences balances the fence markers in text. An odd marker count
// means the final block was never closed (the model stopped mid-block or
// the stream was cut short); a single synthetic closing marker is appended.
// Returns the possibly-mutated text and whether a repair was made.
//
// The repaired text is canonical: callers persist it, not the raw stream.
func RepairFences(text string) (string, bool) {
	if strings.Count(text, FenceMarker)%2 == 0 {
		return text, false
	}
	return text + "\n" + FenceMarker, true
}
