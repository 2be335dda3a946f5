package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/lectern-cli/lectern/catalog"
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/discussion"
	"github.com/lectern-cli/lectern/icon"
	"github.com/lectern-cli/lectern/style"
	"github.com/lectern-cli/lectern/util"
	"github.com/muesli/reflow/wrap"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(commentsCmd)
}

var commentsCmd = &cobra.Command{
	Use:     "comments",
	Short:   "Read and write chapter discussions",
	Aliases: []string{"discuss"},
}

// resolveChapter validates the <course> <chapter> arguments every comments subcommand takes.
func resolveChapter(a *app, args []string) *catalog.Chapter {
	course, err := a.course(args[0])
	handleErr(err)

	chapter, err := a.catalog.Chapter(course.ID, args[1])
	handleErr(err)
	return chapter
}

// contentFrom joins the remaining arguments or asks for the comment in an editor prompt.
func contentFrom(args []string, message, initial string) string {
	if len(args) > 0 {
		return strings.Join(args, " ")
	}

	var content string
	handleErr(survey.AskOne(&survey.Multiline{Message: message, Default: initial}, &content))
	return content
}

func printComment(cmd *cobra.Command, c *discussion.Comment, indent string, width int) {
	header := fmt.Sprintf("%s %s %s",
		style.Bold(c.AuthorName),
		style.Faint(c.CreatedAt.Format("2006-01-02 15:04")),
		style.Faint("#"+c.ID),
	)
	if c.Edited() {
		header += " " + style.Italic(style.Faint("edited"))
	}

	cmd.Println(indent + header)
	for _, line := range strings.Split(wrap.String(c.Content, width-len(indent)), "\n") {
		cmd.Println(indent + line)
	}
}

func init() {
	commentsCmd.AddCommand(commentsListCmd)
	commentsListCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
}

var commentsListCmd = &cobra.Command{
	Use:               "list <course> <chapter>",
	Short:             "Show the discussion of a chapter, newest first",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completionChapters,
	Run: func(cmd *cobra.Command, args []string) {
		a := optionalApp()
		chapter := resolveChapter(a, args)

		comments, err := a.board.List(chapter.ID)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(comments))
			return
		}

		if len(comments) == 0 {
			cmd.Println(style.Faint("No comments yet. Start the discussion with ") + style.Bold("lectern comments post"))
			return
		}

		width, _, err := util.TerminalSize()
		if err != nil || width <= 0 {
			width = 80
		}
		width = min(width, 100)

		cmd.Println(style.Title(chapter.Title) + " " + icon.Get(icon.Comment) + " " + style.Faint(util.Quantify(len(comments), "comment", "comments")))
		cmd.Println()
		for _, c := range comments {
			printComment(cmd, c, "", width)
			for _, r := range c.Replies {
				printComment(cmd, r, "    ", width)
			}
			cmd.Println()
		}
	},
}

func init() {
	commentsCmd.AddCommand(commentsPostCmd)
}

var commentsPostCmd = &cobra.Command{
	Use:               "post <course> <chapter> [text...]",
	Short:             "Comment on a chapter",
	Args:              cobra.MinimumNArgs(2),
	ValidArgsFunction: completionChapters,
	Run: func(cmd *cobra.Command, args []string) {
		a := loggedIn()
		chapter := resolveChapter(a, args)

		c, err := a.board.Post(a.session, chapter.ID, contentFrom(args[2:], "Comment", ""))
		handleErr(err)
		printSuccess(cmd, "posted comment %s", style.Fg(color.Yellow)(c.ID))
	},
}

func init() {
	commentsCmd.AddCommand(commentsReplyCmd)
}

var commentsReplyCmd = &cobra.Command{
	Use:   "reply <course> <chapter> <comment> [text...]",
	Short: "Reply to a comment",
	Args:  cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		a := loggedIn()
		chapter := resolveChapter(a, args)

		r, err := a.board.Reply(a.session, chapter.ID, args[2], contentFrom(args[3:], "Reply", ""))
		handleErr(err)
		printSuccess(cmd, "posted reply %s", style.Fg(color.Yellow)(r.ID))
	},
}

func init() {
	commentsCmd.AddCommand(commentsEditCmd)
}

var commentsEditCmd = &cobra.Command{
	Use:   "edit <course> <chapter> <comment> [text...]",
	Short: "Edit one of your comments",
	Args:  cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		a := loggedIn()
		chapter := resolveChapter(a, args)

		var current string
		if len(args) == 3 {
			comments, err := a.board.List(chapter.ID)
			handleErr(err)
			for _, c := range comments {
				for _, candidate := range append([]*discussion.Comment{c}, c.Replies...) {
					if candidate.ID == args[2] {
						current = candidate.Content
					}
				}
			}
		}

		c, err := a.board.Edit(a.session, chapter.ID, args[2], contentFrom(args[3:], "Comment", current))
		handleErr(err)
		printSuccess(cmd, "edited comment %s", style.Fg(color.Yellow)(c.ID))
	},
}

func init() {
	commentsCmd.AddCommand(commentsDeleteCmd)
	commentsDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var commentsDeleteCmd = &cobra.Command{
	Use:     "delete <course> <chapter> <comment>",
	Short:   "Delete a comment and its replies",
	Long:    "Delete a comment and its replies. Learners may delete their own comments, admins any comment.",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		a := loggedIn()
		chapter := resolveChapter(a, args)

		if !lo.Must(cmd.Flags().GetBool("yes")) {
			var confirmed bool
			handleErr(survey.AskOne(&survey.Confirm{Message: "Delete comment " + args[2] + "?"}, &confirmed))
			if !confirmed {
				return
			}
		}

		handleErr(a.board.Delete(a.session, chapter.ID, args[2]))
		printSuccess(cmd, "deleted comment %s", style.Fg(color.Yellow)(args[2]))
	},
}
