package ui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a notification model", t, func() {
		var m Model

		Convey("Without a notification the content is unchanged", func() {
			So(m.View("a\nb"), ShouldEqual, "a\nb")
		})

		Convey("A notification is appended to the last line", func() {
			cmd := m.Update(NotificationMsg{Text: "Chapter completed", Level: Info})
			So(cmd, ShouldNotBeNil)
			So(m.Text(), ShouldEqual, "Chapter completed")
			So(m.View("a\nb"), ShouldStartWith, "a\nb  ")
			So(m.View("a\nb"), ShouldContainSubstring, "Chapter completed")

			Convey("and cleared by its own timer", func() {
				m.Update(clearMsg{seq: 1})
				So(m.Text(), ShouldBeEmpty)
			})

			Convey("but not by the timer of an older notification", func() {
				m.Update(NotificationMsg{Text: "Course completed"})
				m.Update(clearMsg{seq: 1})
				So(m.Text(), ShouldEqual, "Course completed")
			})
		})

		Convey("Notify produces a notification message", func() {
			msg := Notify("hi", Success)()
			So(msg, ShouldResemble, NotificationMsg{Text: "hi", Level: Success})
		})
	})
}
