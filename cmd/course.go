package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abhisek/prepwise/internal/progression"
)

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Browse courses and your progress",
}

var courseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		enrolled, err := e.progression().Courses(cmd.Context(), e.cfg.Learner)
		if err != nil {
			return fmt.Errorf("list enrollments: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tMODULES\tEST. TIME\tENROLLED")
		for _, c := range e.catalog.Courses() {
			mark := ""
			if slices.Contains(enrolled, c.ID) {
				mark = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", c.ID, c.Title, c.Modules, c.Total, mark)
		}
		return w.Flush()
	},
}

var courseShowCmd = &cobra.Command{
	Use:   "show <course>",
	Short: "Show module progress for a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		pc, err := e.progression().Load(cmd.Context(), e.cfg.Learner, args[0])
		if errors.Is(err, progression.ErrNotEnrolled) {
			return fmt.Errorf("%w; run: prepwise enroll %s", err, args[0])
		}
		if err != nil {
			return err
		}
		return printCourse(cmd.OutOrStdout(), pc)
	},
}

var enrollCmd = &cobra.Command{
	Use:   "enroll <course>",
	Short: "Enroll in a course, unlocking its first module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		pc, err := e.progression().Enroll(cmd.Context(), e.cfg.Learner, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Enrolled %s in %s.\n\n", e.cfg.Learner, pc.Course.Title)
		return printCourse(cmd.OutOrStdout(), pc)
	},
}

func printCourse(out io.Writer, pc *progression.CourseProgressionContext) error {
	fmt.Fprintf(out, "%s (%s)\n\n", pc.Course.Title, pc.Course.ID)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tMODULE\tSTATUS\tSTAGE\tQUIZ\tPROJECT")
	for i, m := range pc.Course.Modules {
		quizCol := "-"
		if m.Progress.QuizScore != nil {
			quizCol = fmt.Sprintf("%d", *m.Progress.QuizScore)
		}
		project := string(m.Progress.ProjectStatus)
		if m.Progress.DeployedLink != "" {
			project = m.Progress.DeployedLink
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1, m.ID, m.Progress.Status, m.Progress.Stage(), quizCol, project)
	}
	return w.Flush()
}

func init() {
	courseCmd.AddCommand(courseListCmd)
	courseCmd.AddCommand(courseShowCmd)
}
