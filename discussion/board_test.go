package discussion

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lectern-cli/lectern/filesystem"
	"github.com/lectern-cli/lectern/session"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func newBoard() (*Board, *time.Time) {
	path := "/comments/" + uuid.NewString() + ".json"
	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	board := NewBoard(Options{
		Path:      func() string { return path },
		Now:       func() time.Time { return now },
		MaxLength: 20,
	})
	return board, &now
}

func TestBoard(t *testing.T) {
	Convey("Given an empty board", t, func() {
		board, now := newBoard()
		ada := lo.Must(session.New("Ada", "ada@example.com"))
		grace := lo.Must(session.New("Grace", "grace@example.com"))

		Convey("Seeded chapters show the builtin comments", func() {
			comments, err := board.List("1-1")
			So(err, ShouldBeNil)
			So(comments, ShouldHaveLength, 2)
			So(comments[0].ID, ShouldEqual, "comment-2")
			So(comments[1].Replies, ShouldHaveLength, 1)
		})

		Convey("Other chapters start empty", func() {
			comments, err := board.List("1-2")
			So(err, ShouldBeNil)
			So(comments, ShouldBeEmpty)
		})

		Convey("Posting keeps the seeds and lists newest first", func() {
			c, err := board.Post(ada, "1-1", "  Nice intro  ")
			So(err, ShouldBeNil)
			So(c.Content, ShouldEqual, "Nice intro")
			So(c.AuthorName, ShouldEqual, "Ada")

			comments, _ := board.List("1-1")
			So(comments, ShouldHaveLength, 3)
			So(comments[0].ID, ShouldEqual, c.ID)
		})

		Convey("Content is validated", func() {
			var verr *ValidationError

			_, err := board.Post(ada, "1-2", "   ")
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Length, ShouldEqual, 0)

			_, err = board.Post(ada, "1-2", strings.Repeat("é", 21))
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Length, ShouldEqual, 21)

			_, err = board.Post(ada, "1-2", strings.Repeat("é", 20))
			So(err, ShouldBeNil)
		})

		Convey("Given a posted comment", func() {
			c := lo.Must(board.Post(ada, "1-2", "Question"))
			*now = now.Add(time.Minute)

			Convey("Replies attach to it", func() {
				r, err := board.Reply(grace, "1-2", c.ID, "Answer")
				So(err, ShouldBeNil)

				comments, _ := board.List("1-2")
				So(comments[0].Replies, ShouldHaveLength, 1)
				So(comments[0].Replies[0].ID, ShouldEqual, r.ID)

				Convey("and a reply to a reply stays one level deep", func() {
					_, err := board.Reply(ada, "1-2", r.ID, "Thanks")
					So(err, ShouldBeNil)

					comments, _ := board.List("1-2")
					So(comments, ShouldHaveLength, 1)
					So(comments[0].Replies, ShouldHaveLength, 2)
					So(comments[0].Replies[1].Replies, ShouldBeEmpty)

					n, _ := board.Count("1-2")
					So(n, ShouldEqual, 3)
				})
			})

			Convey("Replying to an unknown comment fails", func() {
				_, err := board.Reply(grace, "1-2", "nope", "Answer")
				So(errors.Is(err, ErrCommentNotFound), ShouldBeTrue)
			})

			Convey("Only the author may edit", func() {
				_, err := board.Edit(grace, "1-2", c.ID, "Hijacked")
				So(errors.Is(err, ErrForbidden), ShouldBeTrue)

				edited, err := board.Edit(ada, "1-2", c.ID, "Question v2")
				So(err, ShouldBeNil)
				So(edited.Content, ShouldEqual, "Question v2")
				So(edited.Edited(), ShouldBeTrue)
			})

			Convey("Other learners may not delete", func() {
				So(errors.Is(board.Delete(grace, "1-2", c.ID), ErrForbidden), ShouldBeTrue)
			})

			Convey("Admins may delete any comment", func() {
				grace.Role = session.Admin
				So(board.Delete(grace, "1-2", c.ID), ShouldBeNil)

				comments, _ := board.List("1-2")
				So(comments, ShouldBeEmpty)
			})
		})

		Convey("Deleting a seed reply removes only the reply", func() {
			admin := lo.Must(session.New("Root", "root@example.com"))
			admin.Role = session.Admin
			So(board.Delete(admin, "1-1", "reply-1"), ShouldBeNil)

			comments, _ := board.List("1-1")
			So(comments, ShouldHaveLength, 2)
			So(comments[1].Replies, ShouldBeEmpty)
		})
	})
}
