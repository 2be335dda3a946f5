package cmd

import (
	"errors"
	"fmt"

	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/certificate"
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/discussion"
	"github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/session"
	"github.com/lectern-cli/lectern/style"
	"github.com/lectern-cli/lectern/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// app bundles the stores a command acts on. session is nil when nobody is logged in.
type app struct {
	session *session.Session
	catalog *catalog.Catalog
	tracker *progress.Tracker
	issuer  *certificate.Issuer
	board   *discussion.Board
}

func newApp(s *session.Session) *app {
	cat, err := catalog.Load(where.Catalog())
	handleErr(err)

	a := &app{
		session: s,
		catalog: cat,
		issuer:  certificate.NewIssuer(certificate.Options{}),
		board:   discussion.NewBoard(discussion.Options{}),
	}
	a.tracker = progress.NewTracker(cat, progress.Options{
		OnCourseCompleted: a.issue,
	})
	return a
}

// issue is the tracker's course completion hook.
func (a *app) issue(e progress.Enrollment) error {
	if a.session == nil {
		return session.ErrNoSession
	}

	course, err := a.catalog.Course(e.CourseID)
	if err != nil {
		return err
	}

	_, _, err = a.issuer.Obtain(a.session, course, e)
	return err
}

// loggedIn loads the session or exits with a hint to log in.
func loggedIn() *app {
	s, err := session.Load()
	if errors.Is(err, session.ErrNoSession) {
		handleErr(fmt.Errorf("%w, run %s first", err, style.Bold("lectern login")))
	}
	handleErr(err)
	return newApp(s)
}

// course resolves id, suggesting the closest course when it does not exist.
func (a *app) course(id string) (*catalog.Course, error) {
	course, err := a.catalog.Course(id)
	if err == nil {
		return course, nil
	}

	if closest, ok := a.catalog.Closest(id); ok {
		return nil, fmt.Errorf(
			"course %s not found, did you mean %s (%s)?",
			style.Fg(color.Red)(id),
			style.Fg(color.Yellow)(closest.ID),
			closest.Title,
		)
	}
	return nil, err
}

// chapter resolves a chapter id within course, "" meaning the first unfinished one.
func (a *app) chapter(course *catalog.Course, id string) (*catalog.Chapter, error) {
	if id != "" {
		return a.catalog.Chapter(course.ID, id)
	}

	if len(course.Chapters) == 0 {
		return nil, fmt.Errorf("%w: course %s has no chapters", catalog.ErrChapterNotFound, course.ID)
	}

	if a.session != nil {
		if e, err := a.tracker.Enrollment(a.session.LearnerID, course.ID); err == nil {
			if ch, ok := lo.Find(course.Chapters, func(ch *catalog.Chapter) bool { return !e.Has(ch.ID) }); ok {
				return ch, nil
			}
		}
	}
	return course.Chapters[0], nil
}

func completionCourses(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cat, err := catalog.Load(where.Catalog())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return lo.Map(cat.Courses(), func(c *catalog.Course, _ int) string {
		return c.ID + "\t" + c.Title
	}), cobra.ShellCompDirectiveNoFileComp
}

// completionChapters completes a course id, then a chapter id of that course.
func completionChapters(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return completionCourses(cmd, args, toComplete)
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	cat, err := catalog.Load(where.Catalog())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	chapters, err := cat.Chapters(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return lo.Map(chapters, func(ch *catalog.Chapter, _ int) string {
		return ch.ID + "\t" + ch.Title
	}), cobra.ShellCompDirectiveNoFileComp
}
