// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package segment

import (
	"strings"
)

// FenceMarker is the triple-backtick delimiter that opens and closes a
// fenced code block.
const FenceMarker = "```"

// =============================================================================
// SEGMENT TYPES
// =============================================================================

// Kind discriminates segment variants.
type Kind int

const (
	// KindText is prose rendered with inline formatting.
	KindText Kind = iota
	// KindCode is a fenced code block rendered verbatim, optionally
	// syntax-highlighted by language.
	KindCode
)

// Segment is one renderable slice of a message.
type Segment struct {
	Kind     Kind
	Language string // set only for KindCode
	Content  string
}

// Mode selects the parsing strategy.
type Mode int

const (
	// ModeLive is used while a stream is still arriving. The text is kept
	// as a single text segment; fence markers render literally. A block
	// cannot be classified as finished while more chunks may arrive, so
	// structural parsing is deferred until completion.
	ModeLive Mode = iota
	// ModeFinal is used once the full text is known. Fenced blocks become
	// code segments; an unterminated trailing fence is repaired first.
	ModeFinal
)

// =============================================================================
// PARSING
// =============================================================================

// Parse splits text into an ordered list of segments. Output order always
// matches document order of the input.
//
// In ModeFinal an odd fence-marker count means the input was truncated
// mid-block; it is repaired with RepairFences before splitting, so a
// trailing unterminated block still yields a code segment.
func Parse(text string, mode Mode) []Segment {
	if text == "" {
		return nil
	}

	if mode == ModeLive {
		return []Segment{{Kind: KindText, Content: text}}
	}

	repaired, _ := RepairFences(text)
	return split(repaired)
}

// split scans repaired (fence-balanced) text for ```lang\nbody``` blocks.
func split(text string) []Segment {
	var segments []Segment
	rest := text

	for {
		open := strings.Index(rest, FenceMarker)
		if open < 0 {
			segments = appendText(segments, rest)
			return segments
		}

		// The language tag runs from the opening marker to the next
		// newline. A fence with no newline before end of input cannot
		// delimit a block; treat the remainder as text.
		nl := strings.Index(rest[open+len(FenceMarker):], "\n")
		if nl < 0 {
			segments = appendText(segments, rest)
			return segments
		}
		lang := strings.TrimSpace(rest[open+len(FenceMarker) : open+len(FenceMarker)+nl])
		bodyStart := open + len(FenceMarker) + nl + 1

		end := strings.Index(rest[bodyStart:], FenceMarker)
		if end < 0 {
			// Balanced input cannot reach here, but an explicit literal
			// fence inside a language tag could; fall back to text.
			segments = appendText(segments, rest)
			return segments
		}

		segments = appendText(segments, rest[:open])
		body := rest[bodyStart : bodyStart+end]
		// A whitespace-only body does not render as a code block.
		if strings.TrimSpace(body) != "" {
			segments = append(segments, Segment{
				Kind:     KindCode,
				Language: lang,
				Content:  strings.TrimSuffix(body, "\n"),
			})
		}
		rest = rest[bodyStart+end+len(FenceMarker):]
	}
}

// appendText adds a text segment, dropping whitespace-only runs.
func appendText(segments []Segment, text string) []Segment {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return segments
	}
	return append(segments, Segment{Kind: KindText, Content: trimmed})
}
