package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestNormalizePane_PadsToSize(t *testing.T) {
	out := normalizePane("a\nbb", 4, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if w := xansi.StringWidth(ln); w != 4 {
			t.Fatalf("line %d: expected width 4, got %d (%q)", i, w, ln)
		}
	}
}

func TestNormalizePane_TruncatesWithEllipsis(t *testing.T) {
	out := normalizePane("abcdefgh", 5, 1)
	if !strings.Contains(out, "…") {
		t.Fatalf("expected ellipsis in truncated line, got %q", out)
	}
	if w := xansi.StringWidth(out); w != 5 {
		t.Fatalf("expected width 5, got %d", w)
	}
}

func TestNormalizePane_PadsAfterWideRuneCut(t *testing.T) {
	// Cutting mid-wide-rune leaves the line a cell short; it must be padded
	// back out to the requested width.
	out := normalizePane("日本語", 4, 1)
	if w := xansi.StringWidth(out); w != 4 {
		t.Fatalf("expected width 4, got %d (%q)", w, out)
	}
	if !strings.Contains(out, "…") {
		t.Fatalf("expected ellipsis in truncated line, got %q", out)
	}
}

func TestNormalizePane_DropsExtraLines(t *testing.T) {
	out := normalizePane("a\nb\nc\nd", 1, 2)
	if got := len(strings.Split(out, "\n")); got != 2 {
		t.Fatalf("expected 2 lines, got %d", got)
	}
}
