package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/prepwise/internal/app"
)

var rootCmd = &cobra.Command{
	Use:   "prepwise",
	Short: "Interview preparation: gated courses and timed mock assessments",
	Long: "prepwise tracks progress through interview-prep courses, where each module\n" +
		"unlocks the next, and runs timed multi-section mock assessments scored\n" +
		"against a target company.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, app.Options{})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (default $XDG_CONFIG_HOME/prepwise/config.yaml)")
	pf.String("db", "", "Path to SQLite database file (overrides PREPWISE_DB)")
	pf.String("learner", "", "Learner id (defaults to $USER)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(moduleCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}
