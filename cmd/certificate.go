package cmd

import (
	"encoding/json"

	"github.com/lectern-cli/lectern/certificate"
	"github.com/lectern-cli/lectern/color"
	"github.com/lectern-cli/lectern/icon"
	"github.com/lectern-cli/lectern/key"
	"github.com/lectern-cli/lectern/open"
	"github.com/lectern-cli/lectern/style"
	"github.com/lectern-cli/lectern/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(certificateCmd)
}

var certificateCmd = &cobra.Command{
	Use:     "certificate",
	Short:   "Show and export course completion certificates",
	Aliases: []string{"cert"},
}

// obtainCertificate returns the stored certificate, issuing it if the course
// was completed but the certificate is missing.
func obtainCertificate(a *app, courseID string) certificate.Certificate {
	course, err := a.course(courseID)
	handleErr(err)

	e, err := a.tracker.Enrollment(a.session.LearnerID, course.ID)
	handleErr(err)

	cert, _, err := a.issuer.Obtain(a.session, course, e)
	handleErr(err)
	return cert
}

func init() {
	certificateCmd.AddCommand(certificateShowCmd)
}

var certificateShowCmd = &cobra.Command{
	Use:               "show <course>",
	Short:             "Show the certificate of a completed course",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionCourses,
	Run: func(cmd *cobra.Command, args []string) {
		cert := obtainCertificate(loggedIn(), args[0])
		cmd.Println(certificate.Render(cert))
	},
}

func init() {
	certificateCmd.AddCommand(certificateExportCmd)
	certificateExportCmd.Flags().StringP("dir", "d", "", "Directory to export to")
	certificateExportCmd.Flags().BoolP("open", "o", false, "Open the exported file")
	lo.Must0(viper.BindPFlag(key.CertificateExportDir, certificateExportCmd.Flags().Lookup("dir")))
	lo.Must0(viper.BindPFlag(key.CertificateOpenAfterExport, certificateExportCmd.Flags().Lookup("open")))
}

var certificateExportCmd = &cobra.Command{
	Use:               "export <course>",
	Short:             "Export the certificate of a completed course as a text file",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completionCourses,
	Run: func(cmd *cobra.Command, args []string) {
		cert := obtainCertificate(loggedIn(), args[0])

		path, err := certificate.Export(cert, where.CertificateExports())
		handleErr(err)
		printSuccess(cmd, "exported certificate %s to %s", style.Fg(color.Gold)(cert.Number), path)

		if viper.GetBool(key.CertificateOpenAfterExport) {
			handleErr(open.Start(path))
		}
	},
}

func init() {
	certificateCmd.AddCommand(certificateListCmd)
	certificateListCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
}

var certificateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your certificates",
	Run: func(cmd *cobra.Command, args []string) {
		a := loggedIn()
		certs, err := a.issuer.List(a.session.LearnerID)
		handleErr(err)

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(certs))
			return
		}

		if len(certs) == 0 {
			cmd.Println(style.Faint("No certificates yet. Complete a course to earn one"))
			return
		}

		for _, cert := range certs {
			cmd.Printf("%s %s %s %s\n",
				icon.Get(icon.Certificate),
				style.Fg(color.Gold)(cert.Number),
				style.Bold(cert.CourseTitle),
				style.Faint(cert.IssuedAt.Format("2006-01-02")),
			)
		}
	},
}
