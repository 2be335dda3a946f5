package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/style"
)

// keymap defines the watch screen bindings. Only quit works outside watchState.
type keymap struct {
	state state

	quit, forceQuit,
	playPause,
	back, forward,
	volumeUp, volumeDown, mute,
	fullscreen,
	slower, faster,
	complete, next, previous,
	showHelp key.Binding
}

func (k *keymap) setState(s state) {
	k.state = s
}

func newKeymap() *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp(style.Fg(color.Gold)("space"), style.Fg(color.Gold)("play/pause")),
		),
		back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "rewind"),
		),
		forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "skip"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "louder"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "quieter"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		fullscreen: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fullscreen"),
		),
		slower: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "slower"),
		),
		faster: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "faster"),
		),
		complete: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "mark complete"),
		),
		next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next chapter"),
		),
		previous: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous chapter"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k *keymap) ShortHelp() []key.Binding {
	if k.state != watchState {
		return []key.Binding{k.quit}
	}
	return []key.Binding{k.playPause, k.back, k.forward, k.complete, k.next, k.quit, k.showHelp}
}

// FullHelp implements help.KeyMap.
func (k *keymap) FullHelp() [][]key.Binding {
	if k.state != watchState {
		return [][]key.Binding{{k.quit, k.forceQuit}}
	}
	return [][]key.Binding{
		{k.playPause, k.back, k.forward},
		{k.volumeUp, k.volumeDown, k.mute},
		{k.slower, k.faster, k.fullscreen},
		{k.complete, k.next, k.previous},
		{k.quit, k.showHelp},
	}
}
