// Package certificate issues and renders course completion certificates.
package certificate

import (
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/internal/store"
	"github.com/lectern-cli/lectern/log"
	"github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/session"
	"github.com/lectern-cli/lectern/util"
	"github.com/lectern-cli/lectern/where"
	"github.com/samber/lo"
)

var (
	ErrNotCompleted = errors.New("course is not completed")
	ErrNotFound     = errors.New("certificate not found")
)

// errUnchanged aborts a registry update for an already issued certificate.
var errUnchanged = errors.New("unchanged")

// Certificate is an immutable snapshot taken when a course is first completed.
type Certificate struct {
	ID          uuid.UUID `json:"id"`
	Number      string    `json:"number"`
	LearnerID   uuid.UUID `json:"learnerId"`
	LearnerName string    `json:"learnerName"`
	CourseID    string    `json:"courseId"`
	CourseTitle string    `json:"courseTitle"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// Filename is the name an exported certificate is written under.
func (c Certificate) Filename() string {
	return util.SanitizeFilename(c.Number) + ".txt"
}

// number formats LCT-<course>-<yyyymmdd>-<first 8 hex digits of id>.
func number(courseID string, issued time.Time, id uuid.UUID) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return fmt.Sprintf("LCT-%s-%s-%s", courseID, issued.Format("20060102"), short)
}

type Options struct {
	// Path locates the registry file; where.Certificates when nil.
	Path func() string
	Now  func() time.Time
}

// Issuer is the registry of issued certificates, one per learner and course.
type Issuer struct {
	records *store.Document[map[string]Certificate]
	now     func() time.Time
}

func NewIssuer(options Options) *Issuer {
	if options.Path == nil {
		options.Path = where.Certificates
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Issuer{
		records: store.New(options.Path, func() map[string]Certificate {
			return make(map[string]Certificate)
		}),
		now: options.Now,
	}
}

func recordKey(learner uuid.UUID, courseID string) string {
	return learner.String() + "/" + courseID
}

// Obtain returns the learner's certificate for the course, issuing it on first call.
// Later calls return the stored certificate unchanged.
func (i *Issuer) Obtain(s *session.Session, course *catalog.Course, e progress.Enrollment) (Certificate, bool, error) {
	if e.LearnerID != s.LearnerID || e.CourseID != course.ID {
		return Certificate{}, false, fmt.Errorf("enrollment %s does not belong to %s in course %s", e.ID, s.Name, course.ID)
	}
	if !e.IsCompleted {
		return Certificate{}, false, fmt.Errorf("%w: %s", ErrNotCompleted, course.Title)
	}

	var (
		cert   Certificate
		issued bool
	)
	err := i.records.Update(func(records map[string]Certificate) (map[string]Certificate, error) {
		k := recordKey(s.LearnerID, course.ID)
		if existing, ok := records[k]; ok {
			cert = existing
			return nil, errUnchanged
		}

		id := uuid.New()
		now := i.now()
		cert = Certificate{
			ID:          id,
			Number:      number(course.ID, now, id),
			LearnerID:   s.LearnerID,
			LearnerName: s.Name,
			CourseID:    course.ID,
			CourseTitle: course.Title,
			IssuedAt:    now,
		}
		issued = true

		next := maps.Clone(records)
		next[k] = cert
		return next, nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		return Certificate{}, false, err
	}

	if issued {
		log.WithField("course", course.ID).WithField("number", cert.Number).Info("certificate issued")
	}
	return cert, issued, nil
}

// Get returns the certificate for learner and course, or ErrNotFound.
func (i *Issuer) Get(learner uuid.UUID, courseID string) (Certificate, error) {
	records, err := i.records.Load()
	if err != nil {
		return Certificate{}, err
	}

	cert, ok := records[recordKey(learner, courseID)]
	if !ok {
		return Certificate{}, fmt.Errorf("%w: course %s", ErrNotFound, courseID)
	}
	return cert, nil
}

// List returns the learner's certificates, newest first.
func (i *Issuer) List(learner uuid.UUID) ([]Certificate, error) {
	records, err := i.records.Load()
	if err != nil {
		return nil, err
	}

	certs := lo.Filter(lo.Values(records), func(c Certificate, _ int) bool {
		return c.LearnerID == learner
	})
	sort.Slice(certs, func(a, b int) bool {
		if !certs[a].IssuedAt.Equal(certs[b].IssuedAt) {
			return certs[a].IssuedAt.After(certs[b].IssuedAt)
		}
		return certs[a].CourseID < certs[b].CourseID
	})
	return certs, nil
}

// ExportPath is where Export writes cert inside dir.
func ExportPath(cert Certificate, dir string) string {
	return filepath.Join(dir, cert.Filename())
}
