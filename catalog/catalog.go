// Package catalog holds the courses and chapters lectern can play.
//
// A catalog is read from JSON. When no catalog file exists the builtin one,
// embedded at build time, is used.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/lectern-cli/lectern/filesystem"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

//go:embed builtin.json
var builtin []byte

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrChapterNotFound = errors.New("chapter not found")
)

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Difficulties lists every level from easiest to hardest.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// Chapter is one video-backed unit of a course.
type Chapter struct {
	ID          string `json:"id" jsonschema:"description=Chapter identifier, unique within its course"`
	CourseID    string `json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
	// Duration is the length in minutes.
	Duration int `json:"duration" jsonschema:"description=Length in minutes"`
	Order    int `json:"order"`
}

type Course struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Thumbnail      string     `json:"thumbnail,omitempty"`
	InstructorID   string     `json:"instructorId"`
	InstructorName string     `json:"instructorName"`
	Category       string     `json:"category"`
	Difficulty     Difficulty `json:"difficulty" jsonschema:"enum=beginner,enum=intermediate,enum=advanced"`
	Price          float64    `json:"price"`
	Rating         float64    `json:"rating"`
	TotalStudents  int        `json:"totalStudents"`
	TotalDuration  string     `json:"totalDuration"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	Chapters       []*Chapter `json:"chapters"`
}

// Minutes sums the length of every chapter.
func (c *Course) Minutes() int {
	return lo.SumBy(c.Chapters, func(ch *Chapter) int { return ch.Duration })
}

func (c *Course) String() string {
	return c.Title
}

type Category struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Catalog is read-only after Load, so it is safe for concurrent use.
type Catalog struct {
	courses []*Course
	byID    map[string]*Course
}

// Load reads the catalog at path, falling back to the builtin catalog when the file does not exist.
func Load(path string) (*Catalog, error) {
	if path != "" {
		exists, err := filesystem.API().Exists(path)
		if err != nil {
			return nil, err
		}
		if exists {
			data, err := filesystem.API().ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read catalog: %w", err)
			}
			return Parse(data)
		}
	}

	return Builtin(), nil
}

// Builtin returns the catalog shipped with lectern.
func Builtin() *Catalog {
	return lo.Must(Parse(builtin))
}

// Parse decodes and validates a JSON catalog. Chapters are ordered by Order.
func Parse(data []byte) (*Catalog, error) {
	var raw struct {
		Courses []*Course `json:"courses"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{
		courses: raw.Courses,
		byID:    make(map[string]*Course, len(raw.Courses)),
	}

	for _, course := range raw.Courses {
		if course.ID == "" {
			return nil, fmt.Errorf("course %q has no id", course.Title)
		}
		if _, dup := c.byID[course.ID]; dup {
			return nil, fmt.Errorf("duplicate course id %q", course.ID)
		}
		c.byID[course.ID] = course

		seen := make(map[string]bool, len(course.Chapters))
		for _, chapter := range course.Chapters {
			if chapter.ID == "" || seen[chapter.ID] {
				return nil, fmt.Errorf("course %q: missing or duplicate chapter id %q", course.ID, chapter.ID)
			}
			seen[chapter.ID] = true
			chapter.CourseID = course.ID
		}

		slices.SortStableFunc(course.Chapters, func(a, b *Chapter) int {
			return a.Order - b.Order
		})
	}

	return c, nil
}

func (c *Catalog) Courses() []*Course {
	return slices.Clone(c.courses)
}

func (c *Catalog) Course(id string) (*Course, error) {
	course, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, id)
	}
	return course, nil
}

func (c *Catalog) Chapters(courseID string) ([]*Chapter, error) {
	course, err := c.Course(courseID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(course.Chapters), nil
}

// TotalChapters is the chapter count the progress percentage is computed against.
func (c *Catalog) TotalChapters(courseID string) (int, error) {
	course, err := c.Course(courseID)
	if err != nil {
		return 0, err
	}
	return len(course.Chapters), nil
}

func (c *Catalog) Chapter(courseID, chapterID string) (*Chapter, error) {
	chapters, err := c.Chapters(courseID)
	if err != nil {
		return nil, err
	}

	chapter, ok := lo.Find(chapters, func(ch *Chapter) bool { return ch.ID == chapterID })
	if !ok {
		return nil, fmt.Errorf("%w: %s in course %s", ErrChapterNotFound, chapterID, courseID)
	}
	return chapter, nil
}

// Next returns the chapter after chapterID, or false on the last one.
func (c *Catalog) Next(courseID, chapterID string) (*Chapter, bool, error) {
	return c.neighbour(courseID, chapterID, 1)
}

// Previous returns the chapter before chapterID, or false on the first one.
func (c *Catalog) Previous(courseID, chapterID string) (*Chapter, bool, error) {
	return c.neighbour(courseID, chapterID, -1)
}

func (c *Catalog) neighbour(courseID, chapterID string, offset int) (*Chapter, bool, error) {
	chapters, err := c.Chapters(courseID)
	if err != nil {
		return nil, false, err
	}

	i := slices.IndexFunc(chapters, func(ch *Chapter) bool { return ch.ID == chapterID })
	if i < 0 {
		return nil, false, fmt.Errorf("%w: %s in course %s", ErrChapterNotFound, chapterID, courseID)
	}

	j := i + offset
	if j < 0 || j >= len(chapters) {
		return nil, false, nil
	}
	return chapters[j], true, nil
}

// Categories counts courses per category, largest first.
func (c *Catalog) Categories() []Category {
	counts := lo.CountValuesBy(c.courses, func(course *Course) string { return course.Category })

	categories := lo.MapToSlice(counts, func(name string, count int) Category {
		return Category{Name: name, Count: count}
	})
	slices.SortFunc(categories, func(a, b Category) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Name, b.Name)
	})
	return categories
}

// Filter keeps courses in category with difficulty. Empty arguments match everything.
func (c *Catalog) Filter(category string, difficulty Difficulty) []*Course {
	return lo.Filter(c.courses, func(course *Course, _ int) bool {
		if category != "" && !strings.EqualFold(course.Category, category) {
			return false
		}
		return difficulty == "" || course.Difficulty == difficulty
	})
}

// Search ranks courses fuzzily matching query by title, instructor, category or description.
// Title hits rank above description hits.
func (c *Catalog) Search(query string) []*Course {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Courses()
	}

	type field struct {
		course *Course
		weight int
	}

	var (
		targets []string
		fields  []field
	)
	for _, course := range c.courses {
		for weight, text := range []string{course.Title, course.InstructorName, course.Category, course.Description} {
			targets = append(targets, text)
			fields = append(fields, field{course: course, weight: weight})
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	best := make(map[*Course]int)
	for _, rank := range ranks {
		f := fields[rank.OriginalIndex]
		score := f.weight*1000 + rank.Distance
		if prev, ok := best[f.course]; !ok || score < prev {
			best[f.course] = score
		}
	}

	found := lo.Keys(best)
	sort.SliceStable(found, func(i, j int) bool {
		if best[found[i]] != best[found[j]] {
			return best[found[i]] < best[found[j]]
		}
		return found[i].ID < found[j].ID
	})
	return found
}

// Closest returns the course whose id or title is nearest to s by edit distance.
func (c *Catalog) Closest(s string) (*Course, bool) {
	if len(c.courses) == 0 {
		return nil, false
	}

	s = strings.ToLower(s)
	distance := func(course *Course) int {
		return min(
			levenshtein.Distance(s, course.ID),
			levenshtein.Distance(s, strings.ToLower(course.Title)),
		)
	}

	return lo.MinBy(c.courses, func(a, b *Course) bool {
		return distance(a) < distance(b)
	}), true
}

// ParseDifficulty accepts a difficulty in any case; "" and "all" mean no constraint.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return "", nil
	}
	for _, d := range Difficulties {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q, expected one of %v", s, Difficulties)
}
