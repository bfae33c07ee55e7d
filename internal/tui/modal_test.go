package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func forceANSI256(t *testing.T) {
	t.Helper()
	oldProfile := lipgloss.ColorProfile()
	oldBG := lipgloss.HasDarkBackground()
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() {
		lipgloss.SetColorProfile(oldProfile)
		lipgloss.SetHasDarkBackground(oldBG)
	})
}

func TestRenderModalBox_UsesLightBackground_WhenThemeForcedLight(t *testing.T) {
	forceANSI256(t)

	t.Setenv("TEAMDECK_TUI_THEME", "light")
	t.Setenv("TEAMDECK_TUI_DARKBG", "")
	applyThemePreference()
	if lipgloss.HasDarkBackground() {
		t.Fatalf("expected HasDarkBackground=false after forcing light theme")
	}

	out := renderModalBox(80, "Title", "Body")

	// colorSurfaceBg is ac("255","235"), so the light variant should appear.
	if !strings.Contains(out, "48;5;255") {
		t.Fatalf("expected modal to include light background (48;5;255); got: %q", out)
	}
}

func TestApplyThemePreference_DarkBGOverride(t *testing.T) {
	forceANSI256(t)

	t.Setenv("TEAMDECK_TUI_THEME", "")
	t.Setenv("TEAMDECK_TUI_DARKBG", "true")
	applyThemePreference()
	if !lipgloss.HasDarkBackground() {
		t.Fatalf("expected HasDarkBackground=true")
	}
}

func TestRenderConfirmModal_ShowsLabels(t *testing.T) {
	forceANSI256(t)
	lipgloss.SetHasDarkBackground(false)

	out := renderConfirmModal(80, "Confirm delete", "Delete user \"Ada\"?", "Delete", "Cancel", confirmFocusCancel)
	for _, want := range []string{"Confirm delete", "Ada", "Delete", "Cancel"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in confirm modal output", want)
		}
	}
}

func TestRenderInputLine_StripsNewlines(t *testing.T) {
	out := renderInputLine(40, "abc\ndef")
	if strings.Contains(out, "\n") {
		t.Fatalf("expected single-line output, got %q", out)
	}
	if !strings.Contains(out, "abc def") {
		t.Fatalf("expected newline replaced with space, got %q", out)
	}
}
