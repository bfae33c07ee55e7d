package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane clamps rendered content to an exact width-by-height cell so
// panes joined with lipgloss.JoinHorizontal stay aligned regardless of what
// the content renders to.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 && len(lines) > height {
		lines = lines[:height]
	}

	out := make([]string, 0, max(len(lines), height))
	for _, ln := range lines {
		out = append(out, fitLine(ln, width))
	}
	blank := strings.Repeat(" ", width)
	for len(out) < height {
		out = append(out, blank)
	}
	return strings.Join(out, "\n")
}

// fitLine pads or truncates one rendered line to exactly width terminal
// columns, counting cells ANSI-aware and marking truncation with an ellipsis.
func fitLine(ln string, width int) string {
	if width <= 0 {
		return ""
	}
	w := xansi.StringWidth(ln)
	if w > width {
		if width == 1 {
			ln = xansi.Cut(ln, 0, 1)
		} else {
			ln = xansi.Cut(ln, 0, width-1) + "…"
		}
		// The cut can land short of the target when it splits a wide rune.
		w = xansi.StringWidth(ln)
	}
	if w < width {
		ln += strings.Repeat(" ", width-w)
	}
	return ln
}
