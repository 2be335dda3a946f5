package progress

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Enrollment is a learner's relationship to a course.
// Values are never mutated in place: every change produces a new Enrollment.
type Enrollment struct {
	ID        uuid.UUID `json:"id"`
	LearnerID uuid.UUID `json:"learnerId"`
	CourseID  string    `json:"courseId"`
	// CompletedChapters is sorted and free of duplicates.
	CompletedChapters []string   `json:"completedChapters"`
	Progress          int        `json:"progress" jsonschema:"minimum=0,maximum=100"`
	IsCompleted       bool       `json:"isCompleted"`
	EnrolledAt        time.Time  `json:"enrolledAt"`
	LastAccessedAt    time.Time  `json:"lastAccessedAt"`
	CompletedAt       *time.Time `json:"completedAt,omitempty"`
}

// Has reports whether chapterID is completed.
func (e Enrollment) Has(chapterID string) bool {
	_, found := slices.BinarySearch(e.CompletedChapters, chapterID)
	return found
}

// Percent computes round(100 * completed / total), 0 for an empty course.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// withChapter returns a copy with chapterID added and progress derived from chapters.
func (e Enrollment) withChapter(chapterID string, chapters []string, now time.Time) Enrollment {
	next := e
	next.CompletedChapters = append(slices.Clone(e.CompletedChapters), chapterID)
	slices.Sort(next.CompletedChapters)
	next.CompletedChapters = slices.Compact(next.CompletedChapters)

	return next.derive(chapters, now)
}

// derive recomputes Progress and IsCompleted against the course's current chapters.
func (e Enrollment) derive(chapters []string, now time.Time) Enrollment {
	done := lo.CountBy(chapters, e.Has)
	e.Progress = Percent(done, len(chapters))

	complete := len(chapters) > 0 && done == len(chapters)
	if complete && !e.IsCompleted {
		e.IsCompleted = true
		e.CompletedAt = &now
	}
	return e
}

// Split separates enrollments into unfinished and completed ones, preserving order.
func Split(enrollments []Enrollment) (inProgress, completed []Enrollment) {
	return lo.FilterReject(enrollments, func(e Enrollment, _ int) bool {
		return !e.IsCompleted
	})
}

// Transition describes what MarkChapterComplete changed.
type Transition int

const (
	// NoChange: the chapter was already completed.
	NoChange Transition = iota
	// ChapterCompleted: the chapter was added, the course is still unfinished.
	ChapterCompleted
	// CourseCompleted: the chapter was the last one missing.
	CourseCompleted
)

func (t Transition) String() string {
	switch t {
	case ChapterCompleted:
		return "chapter completed"
	case CourseCompleted:
		return "course completed"
	default:
		return "no change"
	}
}

// ChapterState is the per-chapter state within an enrollment.
type ChapterState int

const (
	NotStarted ChapterState = iota
	// InProgress is held in memory only, from the moment a chapter is opened.
	InProgress
	Completed
)

func (s ChapterState) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	default:
		return "not started"
	}
}
