package inline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/certificate"
	"github.com/lectern-cli/lectern/log"
	"github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/session"
	"github.com/samber/lo"
)

// Course is one entry of the inline output.
type Course struct {
	// Course carries only the selected chapters.
	Course *catalog.Course `json:"course"`
	// ChapterStates maps chapter ids to not started, in progress or completed.
	ChapterStates map[string]string        `json:"chapterStates,omitempty"`
	Enrollment    *progress.Enrollment     `json:"enrollment,omitempty"`
	Certificate   *certificate.Certificate `json:"certificate,omitempty"`
}

type Learner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Output struct {
	Query   string    `json:"query"`
	Learner *Learner  `json:"learner,omitempty"`
	Result  []*Course `json:"result"`
}

func Run(options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	courses := options.Catalog.Search(options.Query)
	if options.EnrolledOnly {
		s, ok := options.Session.Get()
		if !ok {
			return session.ErrNoSession
		}
		courses = lo.Filter(courses, func(c *catalog.Course, _ int) bool {
			_, err := options.Tracker.Enrollment(s.LearnerID, c.ID)
			return err == nil
		})
	}

	if picker, ok := options.CoursePicker.Get(); ok {
		courses = lo.Compact([]*catalog.Course{picker(courses)})
	}

	result := make([]*Course, 0, len(courses))
	for _, course := range courses {
		entry, err := prepare(course, options)
		if err != nil {
			return err
		}
		result = append(result, entry)
	}

	if options.Json {
		return writeJson(options, result)
	}

	for _, entry := range result {
		for _, ch := range entry.Course.Chapters {
			log.WithField("course", entry.Course.ID).Debug("found " + ch.ID)
			fmt.Fprintln(options.Out, ch.VideoURL)
		}
	}
	return nil
}

func prepare(course *catalog.Course, options *Options) (*Course, error) {
	chapters := course.Chapters
	if filter, ok := options.ChaptersFilter.Get(); ok {
		var err error
		if chapters, err = filter(chapters); err != nil {
			return nil, err
		}
	}

	selected := *course
	selected.Chapters = chapters
	entry := &Course{Course: &selected}

	s, ok := options.Session.Get()
	if !ok {
		return entry, nil
	}

	enrollment, err := options.Tracker.Enrollment(s.LearnerID, course.ID)
	switch {
	case errors.Is(err, progress.ErrNotEnrolled):
		return entry, nil
	case err != nil:
		return nil, err
	}
	entry.Enrollment = &enrollment

	entry.ChapterStates = make(map[string]string, len(chapters))
	for _, ch := range chapters {
		state, err := options.Tracker.ChapterState(s.LearnerID, course.ID, ch.ID)
		if err != nil {
			return nil, err
		}
		entry.ChapterStates[ch.ID] = state.String()
	}

	if enrollment.IsCompleted {
		cert, err := options.Issuer.Get(s.LearnerID, course.ID)
		switch {
		case err == nil:
			entry.Certificate = &cert
		case !errors.Is(err, certificate.ErrNotFound):
			return nil, err
		}
	}

	return entry, nil
}

func writeJson(options *Options, result []*Course) error {
	output := Output{Query: options.Query, Result: result}
	if s, ok := options.Session.Get(); ok {
		output.Learner = &Learner{ID: s.LearnerID.String(), Name: s.Name}
	}

	return json.NewEncoder(options.Out).Encode(&output)
}
