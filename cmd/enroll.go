package cmd

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(enrollCmd)
}

var enrollCmd = &cobra.Command{
	Use:               "enroll [course]",
	Short:             "Enroll in a course",
	Long:              "Enroll in a course. Without an argument a course is picked interactively.",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionCourses,
	Run: func(cmd *cobra.Command, args []string) {
		a := loggedIn()

		var (
			course *catalog.Course
			err    error
		)
		if len(args) == 1 {
			course, err = a.course(args[0])
			handleErr(err)
		} else {
			course = pickCourse(a)
		}

		_, created, err := a.tracker.Enroll(a.session.LearnerID, course.ID)
		handleErr(err)

		if created {
			printSuccess(cmd, "enrolled in %s", style.Fg(color.Purple)(course.Title))
		} else {
			printSuccess(cmd, "already enrolled in %s", style.Fg(color.Purple)(course.Title))
		}
	},
}

func pickCourse(a *app) *catalog.Course {
	courses := a.catalog.Courses()
	options := lo.Map(courses, func(c *catalog.Course, _ int) string {
		return fmt.Sprintf("%s  %s (%s)", c.ID, c.Title, c.Difficulty)
	})

	var index int
	handleErr(survey.AskOne(&survey.Select{
		Message:  "Pick a course",
		Options:  options,
		PageSize: 10,
	}, &index))

	return courses[index]
}
