package progress

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

type fixture struct {
	tracker     *Tracker
	learner     uuid.UUID
	completions *[]Enrollment
	clock       *time.Time
}

func setup() fixture {
	path := "/progress/" + uuid.NewString() + ".json"
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var completions []Enrollment

	f := fixture{learner: uuid.New(), completions: &completions, clock: &now}
	f.tracker = NewTracker(catalog.Builtin(), Options{
		Path: func() string { return path },
		Now:  func() time.Time { return *f.clock },
		OnCourseCompleted: func(e Enrollment) error {
			completions = append(completions, e)
			return nil
		},
	})
	return f
}

func (f fixture) tick() {
	*f.clock = f.clock.Add(time.Minute)
}

func TestEnroll(t *testing.T) {
	Convey("Given a learner", t, func() {
		f := setup()

		Convey("Enrolling starts at zero progress", func() {
			e, created, err := f.tracker.Enroll(f.learner, "1")
			So(err, ShouldBeNil)
			So(created, ShouldBeTrue)
			So(e.Progress, ShouldEqual, 0)
			So(e.CompletedChapters, ShouldBeEmpty)
			So(e.IsCompleted, ShouldBeFalse)
		})

		Convey("Enrolling twice returns the same record", func() {
			first, _, _ := f.tracker.Enroll(f.learner, "1")
			second, created, err := f.tracker.Enroll(f.learner, "1")
			So(err, ShouldBeNil)
			So(created, ShouldBeFalse)
			So(second.ID, ShouldEqual, first.ID)
		})

		Convey("Unknown courses are rejected", func() {
			_, _, err := f.tracker.Enroll(f.learner, "404")
			So(errors.Is(err, catalog.ErrCourseNotFound), ShouldBeTrue)
		})
	})
}

func TestMarkChapterComplete(t *testing.T) {
	Convey("Given an enrollment in a four chapter course", t, func() {
		f := setup()
		_, _, err := f.tracker.Enroll(f.learner, "1")
		So(err, ShouldBeNil)

		Convey("Completing the first chapter yields 25%", func() {
			e, transition, err := f.tracker.MarkChapterComplete(f.learner, "1", "1-1")
			So(err, ShouldBeNil)
			So(transition, ShouldEqual, ChapterCompleted)
			So(e.Progress, ShouldEqual, 25)
		})

		Convey("Completing a chapter twice changes nothing", func() {
			_, _, _ = f.tracker.MarkChapterComplete(f.learner, "1", "1-2")
			e, transition, err := f.tracker.MarkChapterComplete(f.learner, "1", "1-2")
			So(err, ShouldBeNil)
			So(transition, ShouldEqual, NoChange)
			So(e.CompletedChapters, ShouldResemble, []string{"1-2"})
			So(e.Progress, ShouldEqual, 25)
		})

		Convey("Completed chapters stay sorted whatever the completion order", func() {
			_, _, _ = f.tracker.MarkChapterComplete(f.learner, "1", "1-3")
			e, _, _ := f.tracker.MarkChapterComplete(f.learner, "1", "1-1")
			So(e.CompletedChapters, ShouldResemble, []string{"1-1", "1-3"})
		})

		Convey("With three of four chapters completed", func() {
			for _, id := range []string{"1-1", "1-2", "1-3"} {
				_, _, err := f.tracker.MarkChapterComplete(f.learner, "1", id)
				So(err, ShouldBeNil)
			}

			state, err := f.tracker.CompletionState(f.learner, "1")
			So(err, ShouldBeNil)
			So(state.Progress, ShouldEqual, 75)
			So(state.IsCompleted, ShouldBeFalse)
			So(*f.completions, ShouldBeEmpty)

			Convey("The last chapter completes the course exactly once", func() {
				e, transition, err := f.tracker.MarkChapterComplete(f.learner, "1", "1-4")
				So(err, ShouldBeNil)
				So(transition, ShouldEqual, CourseCompleted)
				So(e.Progress, ShouldEqual, 100)
				So(e.IsCompleted, ShouldBeTrue)
				So(e.CompletedAt, ShouldNotBeNil)
				So(*f.completions, ShouldHaveLength, 1)

				_, transition, err = f.tracker.MarkChapterComplete(f.learner, "1", "1-4")
				So(err, ShouldBeNil)
				So(transition, ShouldEqual, NoChange)
				So(*f.completions, ShouldHaveLength, 1)
			})
		})

		Convey("A failing completion hook still persists the chapter", func() {
			boom := errors.New("boom")
			f.tracker.onCourse = func(Enrollment) error { return boom }
			for _, id := range []string{"1-1", "1-2", "1-3"} {
				_, _, _ = f.tracker.MarkChapterComplete(f.learner, "1", id)
			}

			_, transition, err := f.tracker.MarkChapterComplete(f.learner, "1", "1-4")
			So(errors.Is(err, boom), ShouldBeTrue)
			So(transition, ShouldEqual, CourseCompleted)

			state, _ := f.tracker.CompletionState(f.learner, "1")
			So(state.IsCompleted, ShouldBeTrue)
		})

		Convey("Chapters of another course are rejected", func() {
			_, _, err := f.tracker.MarkChapterComplete(f.learner, "1", "2-1")
			So(errors.Is(err, catalog.ErrChapterNotFound), ShouldBeTrue)
		})

		Convey("Courses the learner is not enrolled in are rejected", func() {
			_, _, err := f.tracker.MarkChapterComplete(f.learner, "2", "2-1")
			So(errors.Is(err, ErrNotEnrolled), ShouldBeTrue)
		})
	})
}

func TestChapterState(t *testing.T) {
	Convey("Given an enrollment", t, func() {
		f := setup()
		_, _, _ = f.tracker.Enroll(f.learner, "1")

		Convey("Chapters start as not started", func() {
			state, err := f.tracker.ChapterState(f.learner, "1", "1-2")
			So(err, ShouldBeNil)
			So(state, ShouldEqual, NotStarted)
		})

		Convey("Visiting a chapter makes it in progress", func() {
			_, err := f.tracker.Visit(f.learner, "1", "1-2")
			So(err, ShouldBeNil)
			state, _ := f.tracker.ChapterState(f.learner, "1", "1-2")
			So(state, ShouldEqual, InProgress)

			Convey("and completing it makes it completed", func() {
				_, _, _ = f.tracker.MarkChapterComplete(f.learner, "1", "1-2")
				state, _ := f.tracker.ChapterState(f.learner, "1", "1-2")
				So(state, ShouldEqual, Completed)
			})
		})
	})
}

func TestEnrollments(t *testing.T) {
	Convey("Given several enrollments", t, func() {
		f := setup()
		_, _, _ = f.tracker.Enroll(f.learner, "1")
		f.tick()
		_, _, _ = f.tracker.Enroll(f.learner, "2")
		f.tick()
		_, _, _ = f.tracker.Enroll(uuid.New(), "3")

		Convey("Only the learner's enrollments are listed, most recent first", func() {
			enrollments, err := f.tracker.Enrollments(f.learner)
			So(err, ShouldBeNil)
			So(enrollments, ShouldHaveLength, 2)
			So(enrollments[0].CourseID, ShouldEqual, "2")
		})

		Convey("Touch moves a course to the front", func() {
			f.tick()
			_, err := f.tracker.Touch(f.learner, "1")
			So(err, ShouldBeNil)
			enrollments, _ := f.tracker.Enrollments(f.learner)
			So(enrollments[0].CourseID, ShouldEqual, "1")
		})

		Convey("Split separates completed courses", func() {
			for _, id := range []string{"2-1", "2-2", "2-3"} {
				_, _, _ = f.tracker.MarkChapterComplete(f.learner, "2", id)
			}
			enrollments, _ := f.tracker.Enrollments(f.learner)
			inProgress, completed := Split(enrollments)
			So(inProgress, ShouldHaveLength, 1)
			So(completed, ShouldHaveLength, 1)
			So(completed[0].CourseID, ShouldEqual, "2")
		})
	})
}

func TestPercent(t *testing.T) {
	Convey("Percent rounds to the nearest integer", t, func() {
		So(Percent(1, 3), ShouldEqual, 33)
		So(Percent(2, 3), ShouldEqual, 67)
		So(Percent(4, 4), ShouldEqual, 100)
	})

	Convey("An empty course has zero progress", t, func() {
		So(Percent(0, 0), ShouldEqual, 0)
	})
}
