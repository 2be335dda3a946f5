package certificate

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/filesystem"
	"github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/session"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestObtain(t *testing.T) {
	Convey("Given a learner who completes a four chapter course", t, func() {
		now := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)
		registry := "/certificates/" + uuid.NewString() + ".json"
		issuer := NewIssuer(Options{
			Path: func() string { return registry },
			Now:  func() time.Time { return now },
		})

		s := lo.Must(session.New("Ada Lovelace", "ada@example.com"))
		cat := catalog.Builtin()
		course := lo.Must(cat.Course("1"))

		tracker := progress.NewTracker(cat, progress.Options{
			Path: func() string { return "/progress/" + uuid.NewString() + ".json" },
		})
		_, _, err := tracker.Enroll(s.LearnerID, course.ID)
		So(err, ShouldBeNil)

		for _, id := range []string{"1-1", "1-2", "1-3"} {
			_, _, err := tracker.MarkChapterComplete(s.LearnerID, course.ID, id)
			So(err, ShouldBeNil)
		}

		Convey("No certificate is issued at 75%", func() {
			e := lo.Must(tracker.Enrollment(s.LearnerID, course.ID))
			So(e.Progress, ShouldEqual, 75)

			_, _, err := issuer.Obtain(s, course, e)
			So(errors.Is(err, ErrNotCompleted), ShouldBeTrue)

			_, err = issuer.Get(s.LearnerID, course.ID)
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Completing the last chapter yields a stable certificate", func() {
			e, transition, err := tracker.MarkChapterComplete(s.LearnerID, course.ID, "1-4")
			So(err, ShouldBeNil)
			So(transition, ShouldEqual, progress.CourseCompleted)
			So(e.Progress, ShouldEqual, 100)

			first, issued, err := issuer.Obtain(s, course, e)
			So(err, ShouldBeNil)
			So(issued, ShouldBeTrue)
			So(first.LearnerName, ShouldEqual, "Ada Lovelace")
			So(first.CourseTitle, ShouldEqual, course.Title)
			So(first.Number, ShouldStartWith, "LCT-1-20240517-")

			now = now.Add(48 * time.Hour)
			second, issued, err := issuer.Obtain(s, course, e)
			So(err, ShouldBeNil)
			So(issued, ShouldBeFalse)
			So(second.ID, ShouldEqual, first.ID)
			So(second.IssuedAt.Equal(first.IssuedAt), ShouldBeTrue)

			list, err := issuer.List(s.LearnerID)
			So(err, ShouldBeNil)
			So(list, ShouldHaveLength, 1)
		})

		Convey("Fetching an issued certificate again leaves the registry untouched", func() {
			e, _, err := tracker.MarkChapterComplete(s.LearnerID, course.ID, "1-4")
			So(err, ShouldBeNil)
			first, _, err := issuer.Obtain(s, course, e)
			So(err, ShouldBeNil)

			written := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			So(filesystem.API().Chtimes(registry, written, written), ShouldBeNil)

			again, issued, err := issuer.Obtain(s, course, e)
			So(err, ShouldBeNil)
			So(issued, ShouldBeFalse)
			So(again.ID, ShouldEqual, first.ID)

			info, err := filesystem.API().Stat(registry)
			So(err, ShouldBeNil)
			So(info.ModTime().Equal(written), ShouldBeTrue)
		})

		Convey("An enrollment of another learner is refused", func() {
			other := lo.Must(session.New("Grace", "grace@example.com"))
			e := lo.Must(tracker.Enrollment(s.LearnerID, course.ID))
			_, _, err := issuer.Obtain(other, course, e)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRender(t *testing.T) {
	Convey("Given a certificate", t, func() {
		cert := Certificate{
			ID:          uuid.New(),
			Number:      "LCT-1-20240517-ABCDEF12",
			LearnerName: "Ada Lovelace",
			CourseID:    "1",
			CourseTitle: "Complete Web Development Bootcamp",
			IssuedAt:    time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC),
		}

		Convey("Text carries the learner, course and number without escape sequences", func() {
			text := Text(cert)
			So(text, ShouldContainSubstring, "ADA LOVELACE")
			So(text, ShouldContainSubstring, "COMPLETE WEB DEVELOPMENT BOOTCAMP")
			So(text, ShouldContainSubstring, "No. LCT-1-20240517-ABCDEF12")
			So(text, ShouldContainSubstring, "May 17, 2024")
			So(strings.Contains(text, "\x1b["), ShouldBeFalse)
		})

		Convey("Export writes <number>.txt", func() {
			path, err := Export(cert, "/exports")
			So(err, ShouldBeNil)
			So(path, ShouldEqual, "/exports/LCT-1-20240517-ABCDEF12.txt")

			data, err := filesystem.API().ReadFile(path)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, Text(cert))
		})
	})
}

func TestNumber(t *testing.T) {
	Convey("Numbers use the course, the issue date and the id prefix", t, func() {
		id := uuid.MustParse("0a1b2c3d-4e5f-6789-abcd-ef0123456789")
		issued := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
		So(number("7", issued, id), ShouldEqual, "LCT-7-20231201-0A1B2C3D")
	})
}
