// Package style composes lipgloss styles into plain string renderers.
package style

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/lectern-cli/lectern/color"
	"github.com/muesli/termenv"
)

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

var plain = func() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.Ascii)
	return r
}()

// Plain returns a style that never emits color sequences, for text written to files.
func Plain() lipgloss.Style {
	return plain.NewStyle()
}

func Colored(fg, bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(fg).Background(bg)
}

// Fg returns a renderer applying the foreground color.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(c, "").Render(s) }
}

var (
	Faint  = func(s string) string { return New().Faint(true).Render(s) }
	Bold   = func(s string) string { return New().Bold(true).Render(s) }
	Italic = func(s string) string { return New().Italic(true).Render(s) }
)

var Title = func(s string) string {
	return Colored(color.Ivory, color.Ink).Padding(0, 1).Render(s)
}

var ErrorTitle = func(s string) string {
	return Colored(color.Ivory, color.Red).Padding(0, 1).Render(s)
}

// Tag renders s as a padded badge, e.g. a course difficulty.
func Tag(fg, bg lipgloss.Color) func(string) string {
	return func(s string) string { return Colored(fg, bg).Padding(0, 1).Render(s) }
}

// Difficulty colors a course difficulty badge by level.
func Difficulty(level string) string {
	switch level {
	case "beginner":
		return Tag(color.Black, color.Green)(level)
	case "intermediate":
		return Tag(color.Black, color.Yellow)(level)
	case "advanced":
		return Tag(color.Ivory, color.Red)(level)
	default:
		return Tag(color.Ivory, color.Gray)(level)
	}
}

// Frame draws the double border used for certificates on top of base.
func Frame(base lipgloss.Style, width int) lipgloss.Style {
	return base.
		Border(lipgloss.DoubleBorder()).
		BorderForeground(color.Gold).
		Padding(1, 4).
		Width(width).
		Align(lipgloss.Center)
}
