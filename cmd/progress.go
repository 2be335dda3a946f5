package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/icon"
	"github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/style"
	"github.com/lectern-cli/lectern/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
}

var progressCmd = &cobra.Command{
	Use:               "progress [course]",
	Short:             "Show your progress in one or all enrolled courses",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completionCourses,
	Run: func(cmd *cobra.Command, args []string) {
		a := loggedIn()
		asJson := lo.Must(cmd.Flags().GetBool("json"))

		var enrollments []progress.Enrollment
		if len(args) == 1 {
			course, err := a.course(args[0])
			handleErr(err)
			e, err := a.tracker.Enrollment(a.session.LearnerID, course.ID)
			handleErr(err)
			enrollments = []progress.Enrollment{e}
		} else {
			var err error
			enrollments, err = a.tracker.Enrollments(a.session.LearnerID)
			handleErr(err)
		}

		if asJson {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(enrollments))
			return
		}

		if len(enrollments) == 0 {
			cmd.Println(style.Faint("No enrollments yet"))
			return
		}

		for _, e := range enrollments {
			course, err := a.catalog.Course(e.CourseID)
			if err != nil {
				continue
			}

			mark := icon.Get(icon.InProgress)
			if e.IsCompleted {
				mark = icon.Get(icon.Completed)
			}
			cmd.Printf("%s %s %3d%% %s\n", mark, progressBar.ViewAs(float64(e.Progress)/100), e.Progress, style.Bold(course.Title))
			cmd.Printf("      %s\n", style.Faint(fmt.Sprintf("%s of %d · last watched %s",
				util.Quantify(len(e.CompletedChapters), "chapter", "chapters"),
				len(course.Chapters),
				e.LastAccessedAt.Format("2006-01-02 15:04"),
			)))
			if e.CompletedAt != nil {
				cmd.Printf("      %s\n", style.Fg(color.Green)("completed "+e.CompletedAt.Format("2006-01-02")))
			}
		}
	},
}
