package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/certificate"
	"github.com/lectern-cli/lectern/internal/ui"
	"github.com/lectern-cli/lectern/log"
	"github.com/lectern-cli/lectern/playback"
	"github.com/lectern-cli/lectern/progress"
)

type (
	openedMsg struct {
		chapter *catalog.Chapter
		err     error
	}
	changedMsg    struct{}
	completionMsg struct{ chapters []*catalog.Chapter }
	exitedMsg     struct{}

	markedMsg struct {
		chapter     *catalog.Chapter
		enrollment  progress.Enrollment
		transition  progress.Transition
		certificate *certificate.Certificate
		err         error
	}
)

// open starts chapter in the player and records the visit.
// The chapter id keys the playback session, so a completion signal names the chapter it was watched in.
func (b *bubble) open(chapter *catalog.Chapter, start float64) tea.Cmd {
	learner := b.options.Session.LearnerID

	return func() tea.Msg {
		if _, err := b.options.Tracker.Visit(learner, chapter.CourseID, chapter.ID); err != nil {
			return openedMsg{chapter: chapter, err: err}
		}

		err := b.controller.Open(playback.Media{
			Key:   chapter.ID,
			URL:   chapter.VideoURL,
			Title: chapter.Title,
			Start: start,
		})
		return openedMsg{chapter: chapter, err: err}
	}
}

func (b *bubble) waitForChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-b.controller.Changes(); !ok {
			return nil
		}
		return changedMsg{}
	}
}

func (b *bubble) waitForCompletion() tea.Cmd {
	return func() tea.Msg {
		<-b.pending
		return completionMsg{chapters: b.drainWatched()}
	}
}

// waitForExit quits the screen when the learner closes the player window.
func (b *bubble) waitForExit() tea.Cmd {
	exiter, ok := b.resource.(interface{ Exited() <-chan struct{} })
	if !ok {
		return nil
	}
	return func() tea.Msg {
		<-exiter.Exited()
		return exitedMsg{}
	}
}

// markComplete is the single route for both the completion signal and the complete key.
func (b *bubble) markComplete(chapter *catalog.Chapter) tea.Cmd {
	learner := b.options.Session.LearnerID

	return func() tea.Msg {
		e, transition, err := b.options.Tracker.MarkChapterComplete(learner, chapter.CourseID, chapter.ID)
		msg := markedMsg{chapter: chapter, enrollment: e, transition: transition, err: err}
		if transition != progress.CourseCompleted {
			return msg
		}

		cert, certErr := b.options.Issuer.Get(learner, chapter.CourseID)
		if certErr == nil {
			msg.certificate = &cert
		} else if msg.err == nil {
			msg.err = certErr
		}
		return msg
	}
}

func (b *bubble) handleMarked(msg markedMsg) tea.Cmd {
	if msg.transition != progress.NoChange || msg.err == nil {
		b.states[msg.chapter.ID] = progress.Completed
		b.progress = msg.enrollment.Progress
	}

	switch {
	case msg.err != nil && errors.Is(msg.err, progress.ErrNotEnrolled):
		return ui.Notify("Enroll in the course to track progress", ui.Failure)
	case msg.err != nil:
		log.WithError(msg.err).WithField("chapter", msg.chapter.ID).Error("marking chapter complete failed")
		return ui.Notify(msg.err.Error(), ui.Failure)
	case msg.transition == progress.CourseCompleted && msg.certificate != nil:
		return ui.Notify(fmt.Sprintf("Course completed, certificate %s issued", msg.certificate.Number), ui.Success)
	case msg.transition == progress.CourseCompleted:
		return ui.Notify("Course completed", ui.Success)
	case msg.transition == progress.ChapterCompleted:
		return ui.Notify(fmt.Sprintf("Chapter completed, %d%% of the course done", msg.enrollment.Progress), ui.Success)
	default:
		return ui.Notify("Chapter already completed", ui.Info)
	}
}

// refreshStates reloads chapter states after a chapter is opened.
func (b *bubble) refreshStates() {
	learner := b.options.Session.LearnerID
	for _, ch := range b.chapters {
		state, err := b.options.Tracker.ChapterState(learner, ch.CourseID, ch.ID)
		if err != nil {
			continue
		}
		b.states[ch.ID] = state
	}

	if e, err := b.options.Tracker.Enrollment(learner, b.chapter.CourseID); err == nil {
		b.progress = e.Progress
	}
}

func (b *bubble) neighbour(next bool) tea.Cmd {
	find := b.options.Catalog.Previous
	if next {
		find = b.options.Catalog.Next
	}

	chapter, ok, err := find(b.chapter.CourseID, b.chapter.ID)
	switch {
	case err != nil:
		return ui.Notify(err.Error(), ui.Failure)
	case !ok && next:
		return ui.Notify("This is the last chapter", ui.Info)
	case !ok:
		return ui.Notify("This is the first chapter", ui.Info)
	}

	b.chapter = chapter
	b.setState(loadingState)
	return tea.Batch(b.spinnerC.Tick, b.open(chapter, 0))
}
