package tui

import tea "github.com/charmbracelet/bubbletea"

// Init opens the first chapter and starts listening to the controller.
func (b *bubble) Init() tea.Cmd {
	return tea.Batch(
		b.spinnerC.Tick,
		b.open(b.chapter, b.options.Start),
		b.waitForChange(),
		b.waitForCompletion(),
		b.waitForExit(),
	)
}
