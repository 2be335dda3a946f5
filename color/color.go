// Package color names the terminal colors lectern renders with.
package color

import "github.com/charmbracelet/lipgloss"

func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI palette, so user terminal themes still apply.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
	White  = New("7")
	Black  = New("8")
)

var (
	HiRed    = New("9")
	HiGreen  = New("10")
	HiYellow = New("11")
	HiBlue   = New("12")
	HiPurple = New("13")
	HiCyan   = New("14")
)

// Accents used by certificates and the watch screen.
var (
	Gold  = New("#e0b84f")
	Gray  = New("#808080")
	Ivory = New("230")
	Ink   = New("62")
)
