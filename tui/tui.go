// Package tui implements the watch screen: one chapter playing in the native
// player, driven from the terminal.
package tui

import (
	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/certificate"
	"github.com/lectern-cli/lectern/player"
	"github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/session"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Session *session.Session
	Catalog *catalog.Catalog
	Tracker *progress.Tracker
	Issuer  *certificate.Issuer
	Course  *catalog.Course
	Chapter *catalog.Chapter
	// Start is the position in seconds playback begins at.
	Start float64
	// Resource plays the media; the configured player is started when nil.
	Resource player.Resource
}

// Run shows the watch screen until the learner quits or the player exits.
func Run(options *Options) error {
	bubble, err := newBubble(options)
	if err != nil {
		return err
	}
	defer bubble.close()

	_, err = tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithReportFocus()).Run()
	return err
}
