package cmd

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/session"
	"github.com/lectern-cli/lectern/style"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringP("name", "n", "", "Your display name")
	loginCmd.Flags().StringP("email", "e", "", "Your email address")
	loginCmd.Flags().Bool("admin", false, "Log in with moderation rights for discussions")
	lo.Must0(loginCmd.Flags().MarkHidden("admin"))
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start a learner session on this machine",
	Long: `Start a learner session on this machine.
Progress, certificates and comments are recorded for the logged in learner.`,
	Run: func(cmd *cobra.Command, args []string) {
		if s, err := session.Load(); err == nil {
			handleErr(errors.New("already logged in as " + s.Name + ", run lectern logout first"))
		}

		name := lo.Must(cmd.Flags().GetString("name"))
		if name == "" {
			handleErr(survey.AskOne(&survey.Input{Message: "Name"}, &name, survey.WithValidator(survey.Required)))
		}

		email := lo.Must(cmd.Flags().GetString("email"))
		if email == "" {
			handleErr(survey.AskOne(&survey.Input{Message: "Email"}, &email, survey.WithValidator(survey.Required)))
		}

		s, err := session.New(name, email)
		handleErr(err)
		if lo.Must(cmd.Flags().GetBool("admin")) {
			s.Role = session.Admin
		}

		handleErr(session.Save(s))
		printSuccess(cmd, "logged in as %s", style.Fg(color.Purple)(s.Name))
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session. Progress and certificates are kept",
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(session.Clear())
		printSuccess(cmd, "logged out")
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in learner",
	Run: func(cmd *cobra.Command, args []string) {
		a := loggedIn()
		s := a.session

		cmd.Printf("%s %s\n", style.Bold(s.Name), style.Faint("<"+s.Email+">"))
		for _, row := range [][2]string{
			{"id", s.LearnerID.String()},
			{"role", string(s.Role)},
			{"since", s.StartedAt.Format("2006-01-02 15:04")},
		} {
			cmd.Printf("%s %s\n", style.Faint(fmt.Sprintf("%-6s", row[0])), row[1])
		}
	},
}
