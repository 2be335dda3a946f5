package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/icon"
	"github.com/lectern-cli/lectern/style"
	"github.com/lectern-cli/lectern/util"
	"github.com/muesli/reflow/wrap"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *bubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case watchState:
		output = b.viewWatch()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *bubble) viewLoading() string {
	return b.renderLines(true, []string{
		style.Title(b.options.Course.Title),
		"",
		b.spinnerC.View() + " Opening " + style.Fg(color.Purple)(b.chapter.Title),
	})
}

func (b *bubble) header() []string {
	return []string{
		style.Title(b.options.Course.Title) + " " + style.Difficulty(string(b.options.Course.Difficulty)),
		"",
		fmt.Sprintf("%s Chapter %d of %d: %s",
			icon.Get(icon.Course),
			b.chapter.Order,
			len(b.chapters),
			style.Fg(color.Purple)(b.chapter.Title),
		),
	}
}

func (b *bubble) viewWatch() string {
	s := b.playback

	status := icon.Get(icon.Pause)
	if s.Playing {
		status = icon.Get(icon.Play)
	}

	timeline := fmt.Sprintf("%s %s / %s  %s",
		status,
		util.FormatSeconds(s.CurrentTime),
		util.FormatSeconds(s.Duration),
		b.progressC.ViewAs(s.Percent()/100),
	)
	if s.Watched {
		timeline += " " + icon.Get(icon.Completed)
	}

	lines := append(b.header(), "", timeline)

	if s.ControlsVisible {
		lines = append(lines, "", b.controls())
	}

	lines = append(lines, "", style.Bold(fmt.Sprintf("Course progress %d%%", b.progress)))
	for _, ch := range b.chapters {
		lines = append(lines, chapterLine(ch, b.states[ch.ID], ch.ID == b.chapter.ID))
	}

	return b.renderLines(s.ControlsVisible, lines)
}

func (b *bubble) controls() string {
	s := b.playback

	volume := fmt.Sprintf("%s %d%%", icon.Get(icon.Volume), int(s.Volume*100+0.5))
	if s.Muted {
		volume = icon.Get(icon.Muted) + " muted"
	}

	parts := []string{volume, fmt.Sprintf("%gx", s.Rate)}
	if s.Fullscreen {
		parts = append(parts, icon.Get(icon.Fullscreen)+" fullscreen")
	}
	return style.Faint(strings.Join(parts, "  "))
}

func (b *bubble) viewError() string {
	body := style.Fg(color.Red)(style.Bold(b.lastError.Error()))
	return b.renderLines(true, append(b.header(),
		"",
		style.ErrorTitle("Error"),
		"",
		wrap.String(body, max(b.width-4, 20)),
	))
}

func (b *bubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h+3 {
			l += strings.Repeat("\n", b.height-h-3)
		}
		l += "\n" + b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
