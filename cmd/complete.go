package cmd

import (
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/icon"
	"github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/style"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(completeCmd)
}

var completeCmd = &cobra.Command{
	Use:               "complete <course> <chapter>",
	Short:             "Mark a chapter as completed",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completionChapters,
	Run: func(cmd *cobra.Command, args []string) {
		a := loggedIn()

		course, err := a.course(args[0])
		handleErr(err)

		e, transition, err := a.tracker.MarkChapterComplete(a.session.LearnerID, course.ID, args[1])
		handleErr(err)

		switch transition {
		case progress.NoChange:
			cmd.Printf("%s chapter %s was already completed\n", icon.Get(icon.Info), args[1])
		case progress.ChapterCompleted:
			printSuccess(cmd, "chapter %s completed, %s is %d%% done", args[1], style.Fg(color.Purple)(course.Title), e.Progress)
		case progress.CourseCompleted:
			printSuccess(cmd, "%s completed", style.Fg(color.Purple)(course.Title))
			if cert, err := a.issuer.Get(a.session.LearnerID, course.ID); err == nil {
				cmd.Printf("%s certificate %s issued, see %s\n",
					icon.Get(icon.Certificate),
					style.Fg(color.Gold)(cert.Number),
					style.Bold("lectern certificate show "+course.ID),
				)
			}
		}
	},
}
