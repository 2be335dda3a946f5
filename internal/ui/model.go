// Package ui holds the transient notification line shown at the bottom of the watch screen.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/icon"
	"github.com/lectern-cli/lectern/style"
)

// Lifetime is how long a notification stays on screen.
const Lifetime = 3 * time.Second

type Level int

const (
	Info Level = iota
	Success
	Failure
)

// NotificationMsg asks the model to show Text.
type NotificationMsg struct {
	Text  string
	Level Level
}

// clearMsg hides the notification with the same sequence number.
// A newer notification is not cleared by the timer of an older one.
type clearMsg struct{ seq int }

// Model is embedded by screens that want notifications.
type Model struct {
	current NotificationMsg
	seq     int
}

// Notify returns a command delivering a notification to the running program.
func Notify(text string, level Level) tea.Cmd {
	return func() tea.Msg {
		return NotificationMsg{Text: text, Level: level}
	}
}

// Update handles notification messages and ignores everything else.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case NotificationMsg:
		m.seq++
		m.current = msg
		seq := m.seq
		return tea.Tick(Lifetime, func(time.Time) tea.Msg {
			return clearMsg{seq: seq}
		})
	case clearMsg:
		if msg.seq == m.seq {
			m.current = NotificationMsg{}
		}
	}
	return nil
}

// Text returns the visible notification, "" when none.
func (m *Model) Text() string {
	return m.current.Text
}

func (m *Model) render() string {
	switch m.current.Level {
	case Success:
		return icon.Get(icon.Success) + " " + style.Fg(color.Green)(m.current.Text)
	case Failure:
		return icon.Get(icon.Fail) + " " + style.Fg(color.Red)(m.current.Text)
	default:
		return style.Faint(m.current.Text)
	}
}

// View appends the notification to the last line of content.
func (m *Model) View(content string) string {
	if m.current.Text == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + m.render()
	return strings.Join(lines, "\n")
}
