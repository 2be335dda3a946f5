package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/icon"
	lprogress "github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/style"
	"github.com/spf13/cobra"
)

var progressBar = progress.New(
	progress.WithGradient(string(color.Ink), string(color.Gold)),
	progress.WithWidth(24),
	progress.WithoutPercentage(),
)

func printDashboard(cmd *cobra.Command, a *app) error {
	enrollments, err := a.tracker.Enrollments(a.session.LearnerID)
	if err != nil {
		return err
	}

	cmd.Printf("Welcome back, %s\n\n", style.Bold(a.session.Name))
	if len(enrollments) == 0 {
		cmd.Println(style.Faint("You are not enrolled in any course yet. Browse with ") + style.Bold("lectern courses"))
		return nil
	}

	inProgress, completed := lprogress.Split(enrollments)

	if len(inProgress) > 0 {
		cmd.Println(style.Title("Continue learning"))
		for _, e := range inProgress {
			course, err := a.catalog.Course(e.CourseID)
			if err != nil {
				continue
			}
			cmd.Printf("  %s %s %s %3d%%  %s\n",
				icon.Get(icon.InProgress),
				progressBar.ViewAs(float64(e.Progress)/100),
				style.Faint(fmt.Sprintf("%d/%d", len(e.CompletedChapters), len(course.Chapters))),
				e.Progress,
				course.Title,
			)
		}
		cmd.Println()
	}

	if len(completed) > 0 {
		cmd.Println(style.Title("Completed"))
		for _, e := range completed {
			course, err := a.catalog.Course(e.CourseID)
			if err != nil {
				continue
			}

			line := fmt.Sprintf("  %s %s", icon.Get(icon.Completed), course.Title)
			if cert, err := a.issuer.Get(a.session.LearnerID, e.CourseID); err == nil {
				line += "  " + icon.Get(icon.Certificate) + " " + style.Fg(color.Gold)(cert.Number)
			}
			cmd.Println(line)
		}
	}
	return nil
}
