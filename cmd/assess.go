package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/prepwise/internal/app"
	"github.com/abhisek/prepwise/internal/assessment"
	"github.com/abhisek/prepwise/internal/screens"
	"github.com/abhisek/prepwise/internal/store"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Take a timed mock assessment",
	Long: "Runs a three-section timed assessment in the terminal. With --level the\n" +
		"assessment starts immediately; otherwise role, company and level are\n" +
		"picked interactively. Companies not in the catalog get a neutral profile.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts app.Options
		opts.Role, _ = cmd.Flags().GetString("role")
		opts.Company, _ = cmd.Flags().GetString("company")
		opts.Level, _ = cmd.Flags().GetString("level")
		if opts.Level == "" && (opts.Role != "" || opts.Company != "") {
			return fmt.Errorf("--level is required with --role or --company")
		}
		return runTUI(cmd, opts)
	},
}

var assessHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List your past assessment results",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		recs, err := e.store.ResultRepo().ListResults(cmd.Context(), e.cfg.Learner, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("list results: %w", err)
		}
		if len(recs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No assessments yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tROLE\tCOMPANY\tLEVEL\tOVERALL\tALIGN\tBAND\tSECTIONS")
		for _, r := range recs {
			res := assessment.FromRecord(r)
			var secs []string
			for _, s := range res.Sections {
				secs = append(secs, fmt.Sprintf("%s %d", s.Section, s.Score))
			}
			role := res.Role
			if role == "" {
				role = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
				r.Timestamp.Local().Format("2006-01-02 15:04"), role, res.Company, res.Level,
				res.Overall, res.Alignment, res.Band, strings.Join(secs, ", "))
		}
		return w.Flush()
	},
}

// runTUI opens the environment and hands it to the terminal UI.
func runTUI(cmd *cobra.Command, opts app.Options) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	deps := screens.Deps{
		Manager: e.manager(),
		Catalog: e.catalog,
		Coach:   e.coach(cmd.Context()),
		Results: e.store.ResultRepo(),
		Learner: e.cfg.Learner,
	}
	return app.Run(deps, opts, e.log)
}

func init() {
	assessCmd.Flags().String("role", "", "Target role, e.g. \"Backend Engineer\" (empty for any)")
	assessCmd.Flags().String("company", "", "Target company; unknown names get a neutral profile")
	assessCmd.Flags().String("level", "", "Experience level: junior, mid or senior")
	assessHistoryCmd.Flags().IntP("limit", "n", 20, "Number of results to show")

	assessCmd.AddCommand(assessHistoryCmd)
}
