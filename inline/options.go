// Package inline implements lectern's non-interactive, scriptable mode.
package inline

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/certificate"
	"github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/session"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

type (
	CoursePicker   func([]*catalog.Course) *catalog.Course
	ChaptersFilter func([]*catalog.Chapter) ([]*catalog.Chapter, error)
)

type Options struct {
	Out     io.Writer
	Catalog *catalog.Catalog
	// Session is absent when nobody is logged in; learner data is omitted then.
	Session        mo.Option[*session.Session]
	Tracker        *progress.Tracker
	Issuer         *certificate.Issuer
	Json           bool
	Query          string
	EnrolledOnly   bool
	CoursePicker   mo.Option[CoursePicker]
	ChaptersFilter mo.Option[ChaptersFilter]
}

func ParseCoursePicker(kind, value string) (CoursePicker, error) {
	switch kind {
	case "first":
		return func(courses []*catalog.Course) *catalog.Course {
			if len(courses) == 0 {
				return nil
			}
			return courses[0]
		}, nil
	case "last":
		return func(courses []*catalog.Course) *catalog.Course {
			if len(courses) == 0 {
				return nil
			}
			return courses[len(courses)-1]
		}, nil
	case "exact":
		return func(courses []*catalog.Course) *catalog.Course {
			course, _ := lo.Find(courses, func(c *catalog.Course) bool {
				return c.ID == value || strings.EqualFold(c.Title, value)
			})
			return course
		}, nil
	default:
		idx, err := strconv.ParseUint(kind, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid course selector: %s", kind)
		}
		return func(courses []*catalog.Course) *catalog.Course {
			if len(courses) == 0 {
				return nil
			}
			return courses[min(int(idx), len(courses)-1)]
		}, nil
	}
}

// ParseChaptersFilter understands first, last, all, an index, a from-to
// range (inclusive, zero based) and @substring@ matched against titles.
func ParseChaptersFilter(description string) (ChaptersFilter, error) {
	switch description {
	case "first":
		return func(chapters []*catalog.Chapter) ([]*catalog.Chapter, error) {
			return lo.Subset(chapters, 0, 1), nil
		}, nil
	case "last":
		return func(chapters []*catalog.Chapter) ([]*catalog.Chapter, error) {
			return lo.Subset(chapters, -1, 1), nil
		}, nil
	case "all":
		return func(chapters []*catalog.Chapter) ([]*catalog.Chapter, error) {
			return chapters, nil
		}, nil
	}

	if from, to, ok := strings.Cut(description, "-"); ok {
		start, err1 := strconv.ParseUint(from, 10, 16)
		end, err2 := strconv.ParseUint(to, 10, 16)
		if err1 == nil && err2 == nil {
			return func(chapters []*catalog.Chapter) ([]*catalog.Chapter, error) {
				s := min(int(start), len(chapters))
				e := min(int(end)+1, len(chapters))
				if s > e {
					return []*catalog.Chapter{}, nil
				}
				return chapters[s:e], nil
			}, nil
		}
	}

	if len(description) > 1 && strings.HasPrefix(description, "@") && strings.HasSuffix(description, "@") {
		sub := strings.ToLower(description[1 : len(description)-1])
		return func(chapters []*catalog.Chapter) ([]*catalog.Chapter, error) {
			return lo.Filter(chapters, func(ch *catalog.Chapter, _ int) bool {
				return strings.Contains(strings.ToLower(ch.Title), sub)
			}), nil
		}, nil
	}

	if idx, err := strconv.ParseUint(description, 10, 16); err == nil {
		return func(chapters []*catalog.Chapter) ([]*catalog.Chapter, error) {
			if len(chapters) <= int(idx) {
				return []*catalog.Chapter{}, nil
			}
			return []*catalog.Chapter{chapters[idx]}, nil
		}, nil
	}

	return nil, fmt.Errorf("invalid chapter filter: %s", description)
}
