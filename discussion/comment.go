// Package discussion keeps per-chapter comment threads.
package discussion

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrForbidden       = errors.New("not allowed to change this comment")
)

// ValidationError reports content that is empty or too long.
type ValidationError struct {
	Length int
	Max    int
}

func (v *ValidationError) Error() string {
	if v.Length == 0 {
		return "comment must not be empty"
	}
	return fmt.Sprintf("comment is %d characters long, at most %d allowed", v.Length, v.Max)
}

// Comment is a top level comment or, inside Replies, a reply to one.
type Comment struct {
	ID         string     `json:"id"`
	ChapterID  string     `json:"chapterId"`
	AuthorID   string     `json:"authorId"`
	AuthorName string     `json:"authorName"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Replies    []*Comment `json:"replies,omitempty"`
}

// Edited reports whether the comment changed after it was posted.
func (c *Comment) Edited() bool {
	return c.UpdatedAt.After(c.CreatedAt)
}

func (c *Comment) clone() *Comment {
	cp := *c
	cp.Replies = lo.Map(c.Replies, func(r *Comment, _ int) *Comment { return r.clone() })
	return &cp
}

type thread []*Comment

func (t thread) clone() thread {
	return lo.Map(t, func(c *Comment, _ int) *Comment { return c.clone() })
}

// find locates id among top level comments and their replies.
// The parent is absent for top level comments.
func (t thread) find(id string) (found *Comment, parent mo.Option[*Comment]) {
	for _, c := range t {
		if c.ID == id {
			return c, mo.None[*Comment]()
		}
		for _, r := range c.Replies {
			if r.ID == id {
				return r, mo.Some(c)
			}
		}
	}
	return nil, mo.None[*Comment]()
}

func validate(content string, limit int) (string, error) {
	content = strings.TrimSpace(content)
	length := utf8.RuneCountInString(content)
	if length == 0 || length > limit {
		return "", &ValidationError{Length: length, Max: limit}
	}
	return content, nil
}

//go:embed seed.json
var seedData []byte

var seeds = func() map[string]thread {
	var m map[string]thread
	lo.Must0(json.Unmarshal(seedData, &m))
	return m
}()
