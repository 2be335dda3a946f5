package discussion

import (
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lectern-cli/lectern/internal/store"
	"github.com/lectern-cli/lectern/key"
	"github.com/lectern-cli/lectern/log"
	"github.com/lectern-cli/lectern/session"
	"github.com/lectern-cli/lectern/where"
	"github.com/spf13/viper"
)

type Options struct {
	// Path locates the comments file; where.Comments when nil.
	Path func() string
	Now  func() time.Time
	// MaxLength falls back to discussion.max_length when zero.
	MaxLength int
}

// Board stores the comment threads of all chapters.
// A chapter without a stored thread shows the builtin seed comments.
type Board struct {
	records   *store.Document[map[string]thread]
	now       func() time.Time
	maxLength int
}

func NewBoard(options Options) *Board {
	if options.Path == nil {
		options.Path = where.Comments
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Board{
		records: store.New(options.Path, func() map[string]thread {
			return make(map[string]thread)
		}),
		now:       options.Now,
		maxLength: options.MaxLength,
	}
}

func (b *Board) limit() int {
	if b.maxLength > 0 {
		return b.maxLength
	}
	return viper.GetInt(key.DiscussionMaxLength)
}

func threadOf(records map[string]thread, chapterID string) thread {
	if t, ok := records[chapterID]; ok {
		return t.clone()
	}
	return seeds[chapterID].clone()
}

// List returns the chapter's comments newest first, replies in posting order.
func (b *Board) List(chapterID string) ([]*Comment, error) {
	records, err := b.records.Load()
	if err != nil {
		return nil, err
	}

	t := threadOf(records, chapterID)
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].CreatedAt.After(t[j].CreatedAt)
	})
	for _, c := range t {
		sort.SliceStable(c.Replies, func(i, j int) bool {
			return c.Replies[i].CreatedAt.Before(c.Replies[j].CreatedAt)
		})
	}
	return t, nil
}

// modify runs fn on a private copy of the chapter's thread and stores the result.
func (b *Board) modify(chapterID string, fn func(thread) (thread, error)) error {
	return b.records.Update(func(records map[string]thread) (map[string]thread, error) {
		t, err := fn(threadOf(records, chapterID))
		if err != nil {
			return nil, err
		}

		next := maps.Clone(records)
		next[chapterID] = t
		return next, nil
	})
}

func (b *Board) newComment(s *session.Session, chapterID, content string) *Comment {
	now := b.now()
	return &Comment{
		ID:         uuid.NewString(),
		ChapterID:  chapterID,
		AuthorID:   s.LearnerID.String(),
		AuthorName: s.Name,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Post adds a top level comment to the chapter.
func (b *Board) Post(s *session.Session, chapterID, content string) (*Comment, error) {
	content, err := validate(content, b.limit())
	if err != nil {
		return nil, err
	}

	comment := b.newComment(s, chapterID, content)
	err = b.modify(chapterID, func(t thread) (thread, error) {
		return append(t, comment), nil
	})
	if err != nil {
		return nil, err
	}

	log.WithField("chapter", chapterID).WithField("comment", comment.ID).Info("comment posted")
	return comment.clone(), nil
}

// Reply answers parentID. Threads are one level deep, so replying to a
// reply attaches the new comment to the same top level comment.
func (b *Board) Reply(s *session.Session, chapterID, parentID, content string) (*Comment, error) {
	content, err := validate(content, b.limit())
	if err != nil {
		return nil, err
	}

	reply := b.newComment(s, chapterID, content)
	err = b.modify(chapterID, func(t thread) (thread, error) {
		target, parent := t.find(parentID)
		if target == nil {
			return nil, fmt.Errorf("%w: %s", ErrCommentNotFound, parentID)
		}

		root := parent.OrElse(target)
		root.Replies = append(root.Replies, reply)
		return t, nil
	})
	if err != nil {
		return nil, err
	}

	log.WithField("chapter", chapterID).WithField("parent", parentID).Info("reply posted")
	return reply.clone(), nil
}

// Edit replaces the content of a comment. Only its author may edit it.
func (b *Board) Edit(s *session.Session, chapterID, commentID, content string) (*Comment, error) {
	content, err := validate(content, b.limit())
	if err != nil {
		return nil, err
	}

	var edited *Comment
	err = b.modify(chapterID, func(t thread) (thread, error) {
		target, _ := t.find(commentID)
		if target == nil {
			return nil, fmt.Errorf("%w: %s", ErrCommentNotFound, commentID)
		}
		if target.AuthorID != s.LearnerID.String() {
			return nil, ErrForbidden
		}

		target.Content = content
		target.UpdatedAt = b.now()
		edited = target.clone()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

// Delete removes a comment together with its replies.
// Authors may delete their own comments, admins any comment.
func (b *Board) Delete(s *session.Session, chapterID, commentID string) error {
	err := b.modify(chapterID, func(t thread) (thread, error) {
		target, parent := t.find(commentID)
		if target == nil {
			return nil, fmt.Errorf("%w: %s", ErrCommentNotFound, commentID)
		}
		if target.AuthorID != s.LearnerID.String() && !s.IsAdmin() {
			return nil, ErrForbidden
		}

		if p, ok := parent.Get(); ok {
			p.Replies = remove(p.Replies, commentID)
			return t, nil
		}
		return remove(t, commentID), nil
	})
	if err != nil {
		return err
	}

	entry := log.WithField("chapter", chapterID).WithField("comment", commentID)
	if s.IsAdmin() {
		entry = entry.WithField("moderator", s.LearnerID)
	}
	entry.Info("comment deleted")
	return nil
}

func remove[S ~[]*Comment](comments S, id string) S {
	kept := make(S, 0, len(comments))
	for _, c := range comments {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	return kept
}

// Count returns the number of comments in the chapter, replies included.
func (b *Board) Count(chapterID string) (int, error) {
	comments, err := b.List(chapterID)
	if err != nil {
		return 0, err
	}

	n := len(comments)
	for _, c := range comments {
		n += len(c.Replies)
	}
	return n, nil
}
