package cmd

import (
	"errors"

	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/style"
	"github.com/lectern-cli/lectern/tui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Float64P("start", "s", 0, "Start playback at this many seconds")
}

var watchCmd = &cobra.Command{
	Use:   "watch <course> [chapter]",
	Short: "Watch a chapter in the media player",
	Long: `Watch a chapter in the media player.
Without a chapter the first unfinished chapter of the course is opened.
Chapters watched past the completion threshold are marked complete.`,
	Args:              cobra.RangeArgs(1, 2),
	ValidArgsFunction: completionChapters,
	Run: func(cmd *cobra.Command, args []string) {
		a := loggedIn()

		course, err := a.course(args[0])
		handleErr(err)

		var chapterID string
		if len(args) == 2 {
			chapterID = args[1]
		}
		chapter, err := a.chapter(course, chapterID)
		handleErr(err)

		if _, err := a.tracker.Enrollment(a.session.LearnerID, course.ID); errors.Is(err, progress.ErrNotEnrolled) {
			_, _, err = a.tracker.Enroll(a.session.LearnerID, course.ID)
			handleErr(err)
			printSuccess(cmd, "enrolled in %s", style.Fg(color.Purple)(course.Title))
		}

		CheckDependencies()

		handleErr(tui.Run(&tui.Options{
			Session: a.session,
			Catalog: a.catalog,
			Tracker: a.tracker,
			Issuer:  a.issuer,
			Course:  course,
			Chapter: chapter,
			Start:   lo.Must(cmd.Flags().GetFloat64("start")),
		}))
	},
}
