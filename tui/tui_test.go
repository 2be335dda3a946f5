package tui

import (
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/certificate"
	"github.com/lectern-cli/lectern/config"
	"github.com/lectern-cli/lectern/filesystem"
	"github.com/lectern-cli/lectern/internal/ui"
	"github.com/lectern-cli/lectern/player"
	"github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/session"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
	lo.Must0(config.Setup())
}

type fakeResource struct {
	player.Broadcaster

	mu     sync.Mutex
	loaded []string
	volume float64
	closed bool
}

func (f *fakeResource) Load(url, _ string, _ float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = append(f.loaded, url)
	return nil
}

func (f *fakeResource) Play() error {
	f.EmitPauseChange(false)
	return nil
}

func (f *fakeResource) Pause() error {
	f.EmitPauseChange(true)
	return nil
}

func (f *fakeResource) Seek(float64) error { return nil }

func (f *fakeResource) SetVolume(level float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = level
	return nil
}

func (f *fakeResource) SetMuted(bool) error { return nil }

func (f *fakeResource) SetSpeed(float64) error { return nil }

func (f *fakeResource) SetFullscreen(bool) error { return nil }

func (f *fakeResource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// batched returns the i-th command of a tea.Batch result.
func batched(cmd tea.Cmd, i int) tea.Cmd {
	return cmd().(tea.BatchMsg)[i]
}

func setup(chapterID string) (*bubble, *fakeResource, *session.Session) {
	cat := catalog.Builtin()
	s := lo.Must(session.New("Ada", "ada@example.com"))
	issuer := certificate.NewIssuer(certificate.Options{
		Path: func() string { return "/tui/" + uuid.NewString() + ".json" },
	})

	tracker := progress.NewTracker(cat, progress.Options{
		Path: func() string { return "/tui/" + uuid.NewString() + ".json" },
		OnCourseCompleted: func(e progress.Enrollment) error {
			course, err := cat.Course(e.CourseID)
			if err != nil {
				return err
			}
			_, _, err = issuer.Obtain(s, course, e)
			return err
		},
	})
	lo.Must2(tracker.Enroll(s.LearnerID, "1"))

	resource := &fakeResource{}
	b := lo.Must(newBubble(&Options{
		Session:  s,
		Catalog:  cat,
		Tracker:  tracker,
		Issuer:   issuer,
		Course:   lo.Must(cat.Course("1")),
		Chapter:  lo.Must(cat.Chapter("1", chapterID)),
		Resource: resource,
	}))

	b.Update(b.open(b.chapter, 0)())
	return b, resource, s
}

func TestWatch(t *testing.T) {
	Convey("Given the watch screen on the first chapter", t, func() {
		b, resource, s := setup("1-1")
		defer b.close()

		Convey("The chapter is loaded and marked in progress", func() {
			So(b.state, ShouldEqual, watchState)
			So(resource.loaded, ShouldHaveLength, 1)
			So(b.states["1-1"], ShouldEqual, progress.InProgress)
			So(b.View(), ShouldContainSubstring, "Introduction to HTML")
		})

		Convey("Space toggles playback", func() {
			b.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			So(b.playback.Playing, ShouldBeFalse)

			b.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			So(b.playback.Playing, ShouldBeTrue)
		})

		Convey("The volume keys step by the configured amount", func() {
			b.Update(tea.KeyMsg{Type: tea.KeyDown})
			So(b.playback.Volume, ShouldAlmostEqual, 0.9)
		})

		Convey("The complete key records the chapter", func() {
			_, cmd := b.Update(runes("c"))
			So(cmd, ShouldNotBeNil)
			msg := cmd().(markedMsg)
			So(msg.transition, ShouldEqual, progress.ChapterCompleted)

			_, cmd = b.Update(msg)
			b.Update(cmd())
			So(b.states["1-1"], ShouldEqual, progress.Completed)
			So(b.progress, ShouldEqual, 25)
			So(b.notifier.Text(), ShouldContainSubstring, "25%")
		})

		Convey("The completion signal records the chapter once", func() {
			resource.EmitMetadataLoaded(100)
			resource.EmitTimeAdvance(96, 100)
			resource.EmitTimeAdvance(97, 100)

			msg := b.waitForCompletion()().(completionMsg)
			So(msg.chapters, ShouldHaveLength, 1)
			So(msg.chapters[0].ID, ShouldEqual, "1-1")
			So(b.drainWatched(), ShouldBeEmpty)

			_, cmd := b.Update(msg)
			marked := batched(cmd, 0)().(markedMsg)
			So(marked.transition, ShouldEqual, progress.ChapterCompleted)

			Convey("and the complete key afterwards changes nothing", func() {
				_, cmd := b.Update(runes("c"))
				So(cmd().(markedMsg).transition, ShouldEqual, progress.NoChange)
			})
		})

		Convey("The next key opens the following chapter", func() {
			_, cmd := b.Update(runes("n"))
			So(b.state, ShouldEqual, loadingState)

			b.Update(batched(cmd, 1)())
			So(b.state, ShouldEqual, watchState)
			So(b.chapter.ID, ShouldEqual, "1-2")
			So(resource.loaded, ShouldHaveLength, 2)
		})

		Convey("A late update from the old chapter during a switch is credited to the old chapter", func() {
			resource.EmitMetadataLoaded(100)
			resource.EmitTimeAdvance(50, 100)

			_, cmd := b.Update(runes("n"))
			So(b.chapter.ID, ShouldEqual, "1-2")
			resource.EmitTimeAdvance(96, 100)

			b.Update(batched(cmd, 1)())
			So(b.state, ShouldEqual, watchState)
			resource.EmitTimeAdvance(97, 100)

			msg := b.waitForCompletion()().(completionMsg)
			So(lo.Map(msg.chapters, func(ch *catalog.Chapter, _ int) string { return ch.ID }), ShouldResemble, []string{"1-1"})

			_, cmd = b.Update(msg)
			marked := batched(cmd, 0)().(markedMsg)
			So(marked.chapter.ID, ShouldEqual, "1-1")
			b.Update(marked)

			So(b.states["1-1"], ShouldEqual, progress.Completed)
			So(b.states["1-2"], ShouldEqual, progress.InProgress)
			state := lo.Must(b.options.Tracker.ChapterState(s.LearnerID, "1", "1-2"))
			So(state, ShouldEqual, progress.InProgress)
		})

		Convey("Completions from consecutive chapters are all delivered", func() {
			resource.EmitMetadataLoaded(100)
			resource.EmitTimeAdvance(96, 100)

			_, cmd := b.Update(runes("n"))
			b.Update(batched(cmd, 1)())
			resource.EmitMetadataLoaded(100)
			resource.EmitTimeAdvance(96, 100)

			msg := b.waitForCompletion()().(completionMsg)
			So(lo.Map(msg.chapters, func(ch *catalog.Chapter, _ int) string { return ch.ID }), ShouldResemble, []string{"1-1", "1-2"})

			_, cmd = b.Update(msg)
			for i := range msg.chapters {
				b.Update(batched(cmd, i)())
			}
			So(b.states["1-1"], ShouldEqual, progress.Completed)
			So(b.states["1-2"], ShouldEqual, progress.Completed)
			So(b.progress, ShouldEqual, 50)
		})

		Convey("The previous key on the first chapter only notifies", func() {
			_, cmd := b.Update(runes("p"))
			So(cmd().(ui.NotificationMsg).Text, ShouldEqual, "This is the first chapter")
			So(b.chapter.ID, ShouldEqual, "1-1")
		})

		Convey("Quitting closes the player", func() {
			_, cmd := b.Update(runes("q"))
			So(cmd(), ShouldResemble, tea.Quit())
			b.close()
			So(resource.closed, ShouldBeTrue)
		})

		_ = s
	})

	Convey("Given the last missing chapter of a course", t, func() {
		b, _, s := setup("1-4")
		defer b.close()
		for _, id := range []string{"1-1", "1-2", "1-3"} {
			lo.Must2(b.options.Tracker.MarkChapterComplete(s.LearnerID, "1", id))
		}

		Convey("Completing it issues a certificate", func() {
			_, cmd := b.Update(runes("c"))
			msg := cmd().(markedMsg)
			So(msg.transition, ShouldEqual, progress.CourseCompleted)
			So(msg.certificate, ShouldNotBeNil)

			_, cmd = b.Update(msg)
			b.Update(cmd())
			So(b.notifier.Text(), ShouldContainSubstring, msg.certificate.Number)
			So(b.progress, ShouldEqual, 100)
		})
	})
}
