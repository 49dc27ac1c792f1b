package sticker

import (
	"strings"
	"testing"
)

func TestBuildQuoteSVG_EscapesMarkup(t *testing.T) {
	svg := BuildQuoteSVG(QuoteCard{Name: "A & B", Text: "<script>", Time: "12:30"})
	if strings.Contains(svg, "<script>") {
		t.Error("body markup was not escaped")
	}
	if !strings.Contains(svg, "&lt;script&gt;") {
		t.Error("escaped body missing from output")
	}
	if !strings.Contains(svg, "A &amp; B") {
		t.Error("escaped name missing from output")
	}
}

func TestBuildQuoteSVG_AvatarOptional(t *testing.T) {
	without := BuildQuoteSVG(QuoteCard{Name: "X", Text: "hi", Time: "12:30"})
	if strings.Contains(without, "<image") {
		t.Error("image element present without an avatar")
	}
	with := BuildQuoteSVG(QuoteCard{Name: "X", Text: "hi", Time: "12:30", AvatarDataURI: "data:image/jpeg;base64,AAAA"})
	if !strings.Contains(with, "data:image/jpeg;base64,AAAA") {
		t.Error("avatar data URI missing from output")
	}
}

func TestWrapBody_HardWrapAndBlankLines(t *testing.T) {
	long := strings.Repeat("a", bubbleWrapLen+5)
	lines := wrapBody(long + "\n\n" + "kısa")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %v", len(lines), lines)
	}
	if len([]rune(lines[0])) != bubbleWrapLen {
		t.Errorf("first line length = %d, want %d", len([]rune(lines[0])), bubbleWrapLen)
	}
	if lines[2] != "kısa" {
		t.Errorf("last line = %q, want kısa", lines[2])
	}
}

func TestWrapBody_EmptyBodyRendersOneLine(t *testing.T) {
	lines := wrapBody("")
	if len(lines) != 1 || lines[0] != " " {
		t.Errorf("got %v, want a single space line", lines)
	}
}

func TestWrapWords(t *testing.T) {
	lines := wrapWords("Ahmet Mehmet Veli Uzunisimli", 18)
	if len(lines) != 2 || lines[0] != "Ahmet Mehmet Veli" || lines[1] != "Uzunisimli" {
		t.Errorf("got %v, want wrap after third word", lines)
	}
	if got := wrapWords("", 18); len(got) != 1 || got[0] != "" {
		t.Errorf("empty name must yield one empty line, got %v", got)
	}
	if got := wrapWords("Kısa", 18); len(got) != 1 || got[0] != "Kısa" {
		t.Errorf("short name must stay on one line, got %v", got)
	}
}
