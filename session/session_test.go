package session

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lectern-cli/lectern/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestNew(t *testing.T) {
	Convey("New", t, func() {
		Convey("creates a learner with a fresh id", func() {
			s, err := New(" Jane Smith ", "Jane@Example.com")
			So(err, ShouldBeNil)
			So(s.Name, ShouldEqual, "Jane Smith")
			So(s.Email, ShouldEqual, "jane@example.com")
			So(s.Role, ShouldEqual, Learner)
			So(s.LearnerID, ShouldNotEqual, uuid.Nil)
			So(s.IsAdmin(), ShouldBeFalse)
		})

		Convey("rejects a blank name", func() {
			_, err := New("  ", "jane@example.com")
			So(err, ShouldNotBeNil)
		})

		Convey("rejects a malformed email", func() {
			_, err := New("Jane", "not-an-email")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLifecycle(t *testing.T) {
	Convey("Given no stored session", t, func() {
		So(Clear(), ShouldBeNil)

		Convey("Load reports ErrNoSession", func() {
			_, err := Load()
			So(errors.Is(err, ErrNoSession), ShouldBeTrue)
		})

		Convey("When a session is saved", func() {
			s, _ := New("John Doe", "john@example.com")
			So(Save(s), ShouldBeNil)

			Convey("Load returns it", func() {
				loaded, err := Load()
				So(err, ShouldBeNil)
				So(loaded.LearnerID, ShouldEqual, s.LearnerID)
				So(loaded.Name, ShouldEqual, "John Doe")
			})

			Convey("Clear forgets it", func() {
				So(Clear(), ShouldBeNil)
				_, err := Load()
				So(errors.Is(err, ErrNoSession), ShouldBeTrue)
			})
		})

		Convey("Saving nil is refused", func() {
			So(Save(nil), ShouldNotBeNil)
		})
	})
}
