// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package segment

import (
	"strings"
	"testing"
)

func TestParseEmptyInput(t *testing.T) {
	if got := Parse("", ModeLive); got != nil {
		t.Errorf("Parse(live) = %v, want nil", got)
	}
	if got := Parse("", ModeFinal); got != nil {
		t.Errorf("Parse(final) = %v, want nil", got)
	}
}

func TestParseLiveIsAlwaysOneTextSegment(t *testing.T) {
	inputs := []string{
		"plain prose",
		"open fence ```go\ncode arriving",
		"```go\nfmt.Println(1)\n```",
		"half ``",
	}
	for _, in := range inputs {
		segs := Parse(in, ModeLive)
		if len(segs) != 1 {
			t.Errorf("Parse(%q, live) = %d segments, want 1", in, len(segs))
			continue
		}
		if segs[0].Kind != KindText || segs[0].Content != in {
			t.Errorf("Parse(%q, live) = %+v", in, segs[0])
		}
	}
}

func TestParseFinalPlainText(t *testing.T) {
	segs := Parse("no code here", ModeFinal)
	if len(segs) != 1 || segs[0].Kind != KindText {
		t.Fatalf("segments = %+v", segs)
	}
}

func TestParseFinalSingleBlock(t *testing.T) {
	segs := Parse("before\n```go\nfmt.Println(1)\n```\nafter", ModeFinal)
	if len(segs) != 3 {
		t.Fatalf("got %d segments: %+v", len(segs), segs)
	}
	if segs[0].Kind != KindText || segs[0].Content != "before" {
		t.Errorf("segs[0] = %+v", segs[0])
	}
	if segs[1].Kind != KindCode || segs[1].Language != "go" || segs[1].Content != "fmt.Println(1)" {
		t.Errorf("segs[1] = %+v", segs[1])
	}
	if segs[2].Kind != KindText || segs[2].Content != "after" {
		t.Errorf("segs[2] = %+v", segs[2])
	}
}

func TestParseFinalMultipleBlocks(t *testing.T) {
	input := "first:\n```python\nprint(1)\n```\nthen:\n```js\nconsole.log(2)\n```"
	segs := Parse(input, ModeFinal)
	if len(segs) != 4 {
		t.Fatalf("got %d segments: %+v", len(segs), segs)
	}
	if segs[1].Language != "python" || segs[3].Language != "js" {
		t.Errorf("languages = %q, %q", segs[1].Language, segs[3].Language)
	}
	// Document order is preserved.
	kinds := []Kind{KindText, KindCode, KindText, KindCode}
	for i, k := range kinds {
		if segs[i].Kind != k {
			t.Errorf("segs[%d].Kind = %v, want %v", i, segs[i].Kind, k)
		}
	}
}

func TestParseFinalUnterminatedBlockIsRepaired(t *testing.T) {
	segs := Parse("```py\nprint(1)", ModeFinal)
	if len(segs) != 1 {
		t.Fatalf("got %d segments: %+v", len(segs), segs)
	}
	if segs[0].Kind != KindCode || segs[0].Language != "py" || segs[0].Content != "print(1)" {
		t.Errorf("segs[0] = %+v", segs[0])
	}
}

func TestParseFinalNoLanguageTag(t *testing.T) {
	segs := Parse("```\nraw\n```", ModeFinal)
	if len(segs) != 1 || segs[0].Kind != KindCode || segs[0].Language != "" {
		t.Fatalf("segments = %+v", segs)
	}
}

func TestParseFinalWhitespaceOnlyBodyDropped(t *testing.T) {
	segs := Parse("text\n```go\n\n\n```\nmore", ModeFinal)
	for _, s := range segs {
		if s.Kind == KindCode {
			t.Errorf("whitespace-only body produced a code segment: %+v", s)
		}
	}
}

func TestParseFinalFenceWithoutNewline(t *testing.T) {
	// A trailing marker with no newline cannot open a block.
	segs := Parse("inline ``` marker", ModeFinal)
	if len(segs) != 1 || segs[0].Kind != KindText {
		t.Fatalf("segments = %+v", segs)
	}
}

func TestRepairFences(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		repaired bool
	}{
		{"no fences", "plain", false},
		{"balanced pair", "```go\nx\n```", false},
		{"two balanced pairs", "```\na\n```\n```\nb\n```", false},
		{"single open", "```go\nx", true},
		{"three markers", "```\na\n```\n```py\nb", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, repaired := RepairFences(tt.in)
			if repaired != tt.repaired {
				t.Fatalf("repaired = %v, want %v", repaired, tt.repaired)
			}
			if !tt.repaired && out != tt.in {
				t.Errorf("balanced input mutated: %q", out)
			}
			if tt.repaired {
				if out != tt.in+"\n"+FenceMarker {
					t.Errorf("out = %q", out)
				}
				if strings.Count(out, FenceMarker)%2 != 0 {
					t.Error("output still unbalanced")
				}
			}
		})
	}
}

// Reassembling segments must reproduce the repaired input modulo boundary
// whitespace.
func TestRoundTripReassembly(t *testing.T) {
	input := "intro\n```go\npackage main\n```\noutro"
	segs := Parse(input, ModeFinal)

	var b strings.Builder
	for i, s := range segs {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Kind == KindCode {
			b.WriteString(FenceMarker + s.Language + "\n" + s.Content + "\n" + FenceMarker)
		} else {
			b.WriteString(s.Content)
		}
	}
	if b.String() != input {
		t.Errorf("reassembled = %q, want %q", b.String(), input)
	}
}
