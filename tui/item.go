package tui

import (
	"fmt"

	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/icon"
	"github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/style"
	"github.com/lectern-cli/lectern/util"
)

// chapterLine renders one entry of the chapter list.
func chapterLine(ch *catalog.Chapter, state progress.ChapterState, current bool) string {
	var mark string
	switch state {
	case progress.Completed:
		mark = icon.Get(icon.Completed)
	case progress.InProgress:
		mark = icon.Get(icon.InProgress)
	default:
		mark = icon.Get(icon.NotStarted)
	}

	title := fmt.Sprintf("%d. %s", ch.Order, ch.Title)
	length := style.Faint(util.FormatMinutes(ch.Duration))
	if current {
		return fmt.Sprintf("%s %s %s", mark, style.Fg(color.Gold)(style.Bold(title)), length)
	}
	return fmt.Sprintf("%s %s %s", mark, title, length)
}
