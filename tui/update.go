package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/log"
	"github.com/lectern-cli/lectern/progress"
	"github.com/samber/lo"
)

func (b *bubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd := b.notifier.Update(msg); cmd != nil {
		return b, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return b, nil
	case tea.KeyMsg:
		if key.Matches(msg, b.keymap.forceQuit) || key.Matches(msg, b.keymap.quit) {
			return b, tea.Quit
		}
		if key.Matches(msg, b.keymap.showHelp) {
			b.helpC.ShowAll = !b.helpC.ShowAll
			return b, nil
		}
	case spinner.TickMsg:
		if b.state != loadingState {
			return b, nil
		}
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return b, cmd
	case openedMsg:
		return b, b.handleOpened(msg)
	case changedMsg:
		b.playback = b.controller.State()
		return b, b.waitForChange()
	case completionMsg:
		if !b.autoComplete || len(msg.chapters) == 0 {
			return b, b.waitForCompletion()
		}
		cmds := lo.Map(msg.chapters, func(ch *catalog.Chapter, _ int) tea.Cmd { return b.markComplete(ch) })
		return b, tea.Batch(append(cmds, b.waitForCompletion())...)
	case markedMsg:
		return b, b.handleMarked(msg)
	case exitedMsg:
		log.Info("player exited, leaving watch screen")
		return b, tea.Quit
	case tea.BlurMsg:
		b.controller.Leave()
		return b, nil
	case tea.FocusMsg:
		b.controller.Interact()
		return b, nil
	}

	if b.state == watchState {
		return b, b.updateWatch(msg)
	}
	return b, nil
}

func (b *bubble) handleOpened(msg openedMsg) tea.Cmd {
	if msg.chapter != b.chapter {
		return nil
	}
	if msg.err != nil {
		b.raiseError(msg.err)
		return nil
	}

	b.setState(watchState)
	b.states[msg.chapter.ID] = progress.InProgress
	b.refreshStates()
	b.playback = b.controller.State()
	return nil
}

func (b *bubble) updateWatch(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	b.controller.Interact()

	switch {
	case key.Matches(keyMsg, b.keymap.playPause):
		b.controller.TogglePlay()
	case key.Matches(keyMsg, b.keymap.back):
		b.controller.Skip(-b.skip)
	case key.Matches(keyMsg, b.keymap.forward):
		b.controller.Skip(b.skip)
	case key.Matches(keyMsg, b.keymap.volumeUp):
		b.controller.SetVolume(b.controller.State().Volume + b.volumeStep)
	case key.Matches(keyMsg, b.keymap.volumeDown):
		b.controller.SetVolume(b.controller.State().Volume - b.volumeStep)
	case key.Matches(keyMsg, b.keymap.mute):
		b.controller.ToggleMute()
	case key.Matches(keyMsg, b.keymap.fullscreen):
		b.controller.ToggleFullscreen()
	case key.Matches(keyMsg, b.keymap.slower):
		b.controller.ShiftRate(-1)
	case key.Matches(keyMsg, b.keymap.faster):
		b.controller.ShiftRate(1)
	case key.Matches(keyMsg, b.keymap.complete):
		return b.markComplete(b.chapter)
	case key.Matches(keyMsg, b.keymap.next):
		return b.neighbour(true)
	case key.Matches(keyMsg, b.keymap.previous):
		return b.neighbour(false)
	default:
		return nil
	}

	b.playback = b.controller.State()
	return nil
}

