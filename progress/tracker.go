// Package progress owns which chapters each learner has completed.
//
// The Tracker is the only writer of enrollment records. Both the automatic
// completion signal from playback and an explicit "mark complete" go through
// MarkChapterComplete, which is idempotent, so the two paths cannot
// double-count a chapter or fire the course completion hook twice.
package progress

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/internal/store"
	"github.com/lectern-cli/lectern/log"
	"github.com/lectern-cli/lectern/where"
	"github.com/samber/lo"
)

var ErrNotEnrolled = errors.New("not enrolled in course")

// errUnchanged aborts a store update that would write identical data.
var errUnchanged = errors.New("unchanged")

// Catalog is the part of *catalog.Catalog the tracker reads.
type Catalog interface {
	Chapters(courseID string) ([]*catalog.Chapter, error)
}

type Options struct {
	// Path locates the enrollment file; where.Enrollments when nil.
	Path func() string
	// Now is time.Now when nil.
	Now func() time.Time
	// OnCourseCompleted runs once, after the completing chapter is persisted.
	OnCourseCompleted func(Enrollment) error
}

// CompletionState is the answer to "how far along is this learner".
type CompletionState struct {
	CompletedChapters []string `json:"completedChapters"`
	Progress          int      `json:"progress"`
	IsCompleted       bool     `json:"isCompleted"`
}

type Tracker struct {
	catalog  Catalog
	records  *store.Document[map[string]Enrollment]
	now      func() time.Time
	onCourse func(Enrollment) error

	mu     sync.Mutex
	opened map[string]map[string]bool
}

func NewTracker(c Catalog, options Options) *Tracker {
	if options.Path == nil {
		options.Path = where.Enrollments
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Tracker{
		catalog: c,
		records: store.New(options.Path, func() map[string]Enrollment {
			return make(map[string]Enrollment)
		}),
		now:      options.Now,
		onCourse: options.OnCourseCompleted,
		opened:   make(map[string]map[string]bool),
	}
}

func recordKey(learner uuid.UUID, courseID string) string {
	return learner.String() + "/" + courseID
}

func (t *Tracker) chapterIDs(courseID string) ([]string, error) {
	chapters, err := t.catalog.Chapters(courseID)
	if err != nil {
		return nil, err
	}
	return lo.Map(chapters, func(ch *catalog.Chapter, _ int) string { return ch.ID }), nil
}

// Enroll creates the enrollment with progress 0. Enrolling twice returns the existing record.
func (t *Tracker) Enroll(learner uuid.UUID, courseID string) (Enrollment, bool, error) {
	if _, err := t.chapterIDs(courseID); err != nil {
		return Enrollment{}, false, err
	}

	var (
		enrollment Enrollment
		created    bool
	)
	err := t.records.Update(func(records map[string]Enrollment) (map[string]Enrollment, error) {
		k := recordKey(learner, courseID)
		if existing, ok := records[k]; ok {
			enrollment = existing
			return nil, errUnchanged
		}

		now := t.now()
		enrollment = Enrollment{
			ID:                uuid.New(),
			LearnerID:         learner,
			CourseID:          courseID,
			CompletedChapters: []string{},
			EnrolledAt:        now,
			LastAccessedAt:    now,
		}
		created = true

		next := maps.Clone(records)
		next[k] = enrollment
		return next, nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		return Enrollment{}, false, err
	}

	if created {
		log.WithField("course", courseID).WithField("learner", learner).Info("enrolled")
	}
	return enrollment, created, nil
}

// Enrollment returns the learner's record for courseID.
func (t *Tracker) Enrollment(learner uuid.UUID, courseID string) (Enrollment, error) {
	records, err := t.records.Load()
	if err != nil {
		return Enrollment{}, err
	}

	e, ok := records[recordKey(learner, courseID)]
	if !ok {
		return Enrollment{}, fmt.Errorf("%w: %s", ErrNotEnrolled, courseID)
	}
	return e, nil
}

// MarkChapterComplete adds chapterID to the completed set.
//
// An already completed chapter yields NoChange and no side effects. When
// the chapter completes the course, OnCourseCompleted runs exactly once; its
// error is returned alongside the already persisted enrollment.
func (t *Tracker) MarkChapterComplete(learner uuid.UUID, courseID, chapterID string) (Enrollment, Transition, error) {
	chapters, err := t.chapterIDs(courseID)
	if err != nil {
		return Enrollment{}, NoChange, err
	}
	if !lo.Contains(chapters, chapterID) {
		return Enrollment{}, NoChange, fmt.Errorf("%w: %s in course %s", catalog.ErrChapterNotFound, chapterID, courseID)
	}

	var (
		enrollment Enrollment
		transition = NoChange
	)
	err = t.records.Update(func(records map[string]Enrollment) (map[string]Enrollment, error) {
		k := recordKey(learner, courseID)
		current, ok := records[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotEnrolled, courseID)
		}

		if current.Has(chapterID) {
			enrollment = current
			return nil, errUnchanged
		}

		enrollment = current.withChapter(chapterID, chapters, t.now())
		transition = ChapterCompleted
		if enrollment.IsCompleted && !current.IsCompleted {
			transition = CourseCompleted
		}

		next := maps.Clone(records)
		next[k] = enrollment
		return next, nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		return Enrollment{}, NoChange, err
	}

	entry := log.WithField("course", courseID).WithField("chapter", chapterID)
	entry.WithField("progress", enrollment.Progress).Info(transition.String())

	if transition == CourseCompleted && t.onCourse != nil {
		if err := t.onCourse(enrollment); err != nil {
			entry.WithError(err).Error("course completion hook failed")
			return enrollment, transition, fmt.Errorf("course completed, follow-up failed: %w", err)
		}
	}

	return enrollment, transition, nil
}

// CompletionState returns the completed set and percentage as of the last MarkChapterComplete.
func (t *Tracker) CompletionState(learner uuid.UUID, courseID string) (CompletionState, error) {
	e, err := t.Enrollment(learner, courseID)
	if err != nil {
		return CompletionState{}, err
	}

	return CompletionState{
		CompletedChapters: e.CompletedChapters,
		Progress:          e.Progress,
		IsCompleted:       e.IsCompleted,
	}, nil
}

// Touch records that the learner viewed the course now.
func (t *Tracker) Touch(learner uuid.UUID, courseID string) (Enrollment, error) {
	var enrollment Enrollment
	err := t.records.Update(func(records map[string]Enrollment) (map[string]Enrollment, error) {
		k := recordKey(learner, courseID)
		current, ok := records[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotEnrolled, courseID)
		}

		enrollment = current
		enrollment.LastAccessedAt = t.now()

		next := maps.Clone(records)
		next[k] = enrollment
		return next, nil
	})
	return enrollment, err
}

// Visit is Touch plus marking chapterID as opened, which makes it InProgress until completed.
func (t *Tracker) Visit(learner uuid.UUID, courseID, chapterID string) (Enrollment, error) {
	enrollment, err := t.Touch(learner, courseID)
	if err != nil {
		return enrollment, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	k := recordKey(learner, courseID)
	if t.opened[k] == nil {
		t.opened[k] = make(map[string]bool)
	}
	t.opened[k][chapterID] = true
	return enrollment, nil
}

// ChapterState derives NotStarted, InProgress or Completed for a chapter.
func (t *Tracker) ChapterState(learner uuid.UUID, courseID, chapterID string) (ChapterState, error) {
	e, err := t.Enrollment(learner, courseID)
	if err != nil {
		return NotStarted, err
	}
	if e.Has(chapterID) {
		return Completed, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.opened[recordKey(learner, courseID)][chapterID] {
		return InProgress, nil
	}
	return NotStarted, nil
}

// Enrollments lists the learner's enrollments, most recently accessed first.
func (t *Tracker) Enrollments(learner uuid.UUID) ([]Enrollment, error) {
	records, err := t.records.Load()
	if err != nil {
		return nil, err
	}

	enrollments := lo.Filter(lo.Values(records), func(e Enrollment, _ int) bool {
		return e.LearnerID == learner
	})
	sort.SliceStable(enrollments, func(i, j int) bool {
		a, b := enrollments[i], enrollments[j]
		if !a.LastAccessedAt.Equal(b.LastAccessedAt) {
			return a.LastAccessedAt.After(b.LastAccessedAt)
		}
		return a.CourseID < b.CourseID
	})
	return enrollments, nil
}
