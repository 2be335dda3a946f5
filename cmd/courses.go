package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/icon"
	"github.com/lectern-cli/lectern/key"
	"github.com/lectern-cli/lectern/progress"
	"github.com/lectern-cli/lectern/query"
	"github.com/lectern-cli/lectern/session"
	"github.com/lectern-cli/lectern/style"
	"github.com/lectern-cli/lectern/util"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(coursesCmd)
	coursesCmd.PersistentFlags().BoolP("json", "j", false, "Format the output as JSON")
}

var coursesCmd = &cobra.Command{
	Use:     "courses",
	Short:   "Browse the course catalog",
	Aliases: []string{"catalog"},
	Run: func(cmd *cobra.Command, args []string) {
		coursesListCmd.Run(cmd, args)
	},
}

// optionalApp returns the app with the session when someone is logged in.
func optionalApp() *app {
	s, err := session.Load()
	if err != nil {
		return newApp(nil)
	}
	return newApp(s)
}

func printCourses(cmd *cobra.Command, a *app, courses []*catalog.Course) {
	if lo.Must(cmd.Flags().GetBool("json")) {
		handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(courses))
		return
	}

	if len(courses) == 0 {
		cmd.Println(style.Faint("No courses found"))
		return
	}

	for _, course := range courses {
		mark := icon.Get(icon.Course)
		if a.session != nil {
			if e, err := a.tracker.Enrollment(a.session.LearnerID, course.ID); err == nil {
				mark = icon.Get(icon.InProgress)
				if e.IsCompleted {
					mark = icon.Get(icon.Completed)
				}
			}
		}

		cmd.Printf("%s %s %s %s\n",
			mark,
			style.Fg(color.Yellow)(fmt.Sprintf("%-3s", course.ID)),
			style.Bold(course.Title),
			style.Difficulty(string(course.Difficulty)),
		)
		cmd.Printf("      %s\n", style.Faint(fmt.Sprintf("%s · %s · %s · %.1f★",
			course.InstructorName,
			course.Category,
			util.Quantify(len(course.Chapters), "chapter", "chapters"),
			course.Rating,
		)))
	}
}

func init() {
	coursesCmd.AddCommand(coursesListCmd)
	coursesListCmd.Flags().StringP("category", "c", "", "Only show courses of this category")
	coursesListCmd.Flags().StringP("difficulty", "d", "", "Only show courses of this difficulty (beginner, intermediate, advanced)")
	lo.Must0(coursesListCmd.RegisterFlagCompletionFunc("difficulty", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return lo.Map(catalog.Difficulties, func(d catalog.Difficulty, _ int) string { return string(d) }), cobra.ShellCompDirectiveNoFileComp
	}))
}

var coursesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List courses, optionally filtered by category and difficulty",
	Run: func(cmd *cobra.Command, args []string) {
		a := optionalApp()

		category, _ := cmd.Flags().GetString("category")
		level, _ := cmd.Flags().GetString("difficulty")
		difficulty, err := catalog.ParseDifficulty(level)
		handleErr(err)

		printCourses(cmd, a, a.catalog.Filter(category, difficulty))
	},
}

func init() {
	coursesCmd.AddCommand(coursesShowCmd)
}

var coursesShowCmd = &cobra.Command{
	Use:               "show <course>",
	Short:             "Show a course and its chapters",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionCourses,
	Run: func(cmd *cobra.Command, args []string) {
		a := optionalApp()
		course, err := a.course(args[0])
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(course))
			return
		}

		width, _, err := util.TerminalSize()
		if err != nil || width <= 0 {
			width = 80
		}

		cmd.Println(style.Title(course.Title) + " " + style.Difficulty(string(course.Difficulty)))
		cmd.Println()
		cmd.Println(wrap.String(course.Description, min(width, 100)))
		cmd.Println()
		cmd.Println(style.Faint(fmt.Sprintf("%s · %s · %s · %d students · $%.2f",
			course.InstructorName,
			course.Category,
			util.FormatMinutes(course.Minutes()),
			course.TotalStudents,
			course.Price,
		)))
		cmd.Println()

		var enrolled bool
		if a.session != nil {
			if e, err := a.tracker.Enrollment(a.session.LearnerID, course.ID); err == nil {
				enrolled = true
				cmd.Println(style.Bold(fmt.Sprintf("Progress %d%%", e.Progress)))
			}
		}

		for _, ch := range course.Chapters {
			mark := icon.Get(icon.NotStarted)
			if enrolled {
				state, _ := a.tracker.ChapterState(a.session.LearnerID, course.ID, ch.ID)
				if state == progress.Completed {
					mark = icon.Get(icon.Completed)
				}
			}
			cmd.Printf("%s %s %s %s\n", mark, style.Fg(color.Yellow)(ch.ID), ch.Title, style.Faint(util.FormatMinutes(ch.Duration)))
		}
	},
}

func init() {
	coursesCmd.AddCommand(coursesSearchCmd)
	coursesSearchCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}
}

var coursesSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search courses by title, instructor, category and description",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := optionalApp()
		q := strings.Join(args, " ")

		found := a.catalog.Search(q)
		if len(found) > 0 {
			if err := query.Remember(q, 1); err != nil {
				handleErr(err)
			}
		} else if viper.GetBool(key.SearchShowQuerySuggestions) {
			if suggestion, ok := query.Suggest(q).Get(); ok {
				cmd.Printf("%s did you mean %s?\n", icon.Get(icon.Info), style.Fg(color.Yellow)(suggestion))
			}
		}

		printCourses(cmd, a, found)
	},
}

func init() {
	coursesCmd.AddCommand(coursesCategoriesCmd)
}

var coursesCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List course categories with their number of courses",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp(nil)
		categories := a.catalog.Categories()

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(categories))
			return
		}

		for _, c := range categories {
			cmd.Printf("%s %s\n", style.Bold(c.Name), style.Faint(util.Quantify(c.Count, "course", "courses")))
		}
	},
}
