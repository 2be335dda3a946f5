package cmd

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/lectern-cli/lectern/filesystem"
	"github.com/lectern-cli/lectern/inline"
	"github.com/lectern-cli/lectern/query"
	"github.com/lectern-cli/lectern/session"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringP("query", "q", "", "Search query, empty selects the whole catalog")
	inlineCmd.Flags().StringP("course", "c", "", "Criteria for selecting one course from the results")
	inlineCmd.Flags().StringP("chapters", "C", "", "Criteria for selecting chapters of the chosen courses")
	inlineCmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")
	inlineCmd.Flags().BoolP("enrolled", "e", false, "Only include courses the logged in learner is enrolled in")
	inlineCmd.Flags().StringP("output", "o", "", "Write the output to this file")

	lo.Must0(inlineCmd.RegisterFlagCompletionFunc("query", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}))
}

var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Query courses, progress and certificates non-interactively",
	Long: `Query courses, progress and certificates non-interactively, for scripts.

Course selectors:
  first - first course in the list
  last - last course in the list
  exact - course whose id or title equals the query
  [number] - select course by index (starting from 0)

Chapter selectors:
  first - first chapter of the course
  last - last chapter of the course
  all - all chapters
  [number] - select chapter by index (starting from 0)
  [from]-[to] - select chapters by range
  @[substring]@ - select chapters by title substring

Without the json flag the video urls of the selected chapters are printed.
When logged in, enrollments, chapter states and certificates are included.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		if !lo.Must(cmd.Flags().GetBool("json")) {
			lo.Must0(cmd.MarkFlagRequired("course"))
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		s := mo.None[*session.Session]()
		if loaded, err := session.Load(); err == nil {
			s = mo.Some(loaded)
		}
		a := newApp(s.OrEmpty())

		q := lo.Must(cmd.Flags().GetString("query"))

		var writer io.Writer = os.Stdout
		if output := lo.Must(cmd.Flags().GetString("output")); output != "" {
			file, err := filesystem.API().Create(output)
			handleErr(err)
			defer file.Close()
			writer = file
		}

		picker := mo.None[inline.CoursePicker]()
		if flag := lo.Must(cmd.Flags().GetString("course")); flag != "" {
			fn, err := inline.ParseCoursePicker(flag, q)
			handleErr(err)
			picker = mo.Some(fn)
		}

		filter := mo.None[inline.ChaptersFilter]()
		if flag := lo.Must(cmd.Flags().GetString("chapters")); flag != "" {
			fn, err := inline.ParseChaptersFilter(flag)
			handleErr(err)
			filter = mo.Some(fn)
		}

		handleErr(inline.Run(&inline.Options{
			Out:            writer,
			Catalog:        a.catalog,
			Session:        s,
			Tracker:        a.tracker,
			Issuer:         a.issuer,
			Json:           lo.Must(cmd.Flags().GetBool("json")),
			Query:          q,
			EnrolledOnly:   lo.Must(cmd.Flags().GetBool("enrolled")),
			CoursePicker:   picker,
			ChaptersFilter: filter,
		}))
	},
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)
}

var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the inline output",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "course", "chapter", "output", "learner", "enrollment", "certificate":
				return filepath.Base(t.PkgPath()) + "." + name
			}
			return name
		}

		handleErr(json.NewEncoder(cmd.OutOrStdout()).Encode(reflector.Reflect(&inline.Output{})))
	},
}
