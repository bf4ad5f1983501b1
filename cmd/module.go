package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/prepwise/internal/progression"
	"github.com/abhisek/prepwise/internal/quiz"
)

var moduleCmd = &cobra.Command{
	Use:   "module",
	Short: "Complete module stages: theory, video, quiz, project",
}

var moduleTheoryCmd = &cobra.Command{
	Use:   "theory <course> <module>",
	Short: "Mark the theory stage read",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out, err := e.progression().CompleteTheory(cmd.Context(), e.cfg.Learner, args[0], args[1])
		if err != nil {
			return err
		}
		printOutcome(cmd.OutOrStdout(), out)
		return nil
	},
}

var moduleVideoCmd = &cobra.Command{
	Use:   "video <course> <module>",
	Short: "Mark the video stage watched",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out, err := e.progression().CompleteVideo(cmd.Context(), e.cfg.Learner, args[0], args[1])
		if err != nil {
			return err
		}
		printOutcome(cmd.OutOrStdout(), out)
		return nil
	},
}

var moduleQuizCmd = &cobra.Command{
	Use:   "quiz <course> <module>",
	Short: "Show the module quiz, or submit it with --answers",
	Long: "Without --answers the questions are printed. With --answers the single\n" +
		"allowed attempt is graded, e.g. --answers \"0,2;1;3\" for three questions.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		svc := e.progression()
		questions, err := svc.ModuleQuiz(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		raw, _ := cmd.Flags().GetString("answers")
		if raw == "" {
			printQuiz(cmd.OutOrStdout(), questions)
			return nil
		}
		answers, err := parseAnswers(raw)
		if err != nil {
			return err
		}

		out, err := svc.SubmitQuiz(cmd.Context(), e.cfg.Learner, args[0], args[1], answers)
		if err != nil {
			return err
		}
		printGrade(cmd.OutOrStdout(), questions, out.Grade)
		printOutcome(cmd.OutOrStdout(), out)
		return nil
	},
}

var moduleProjectCmd = &cobra.Command{
	Use:   "project <course> <module>",
	Short: "Submit the module project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deployed, _ := cmd.Flags().GetString("deployed")
		github, _ := cmd.Flags().GetString("github")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out, err := e.progression().SubmitProject(cmd.Context(), e.cfg.Learner, args[0], args[1], deployed, github)
		if err != nil {
			return err
		}
		printOutcome(cmd.OutOrStdout(), out)
		return nil
	},
}

func printQuiz(w io.Writer, questions []quiz.Question) {
	for i, q := range questions {
		fmt.Fprintf(w, "%d. %s\n", i+1, q.Prompt)
		if q.MultiSelect() {
			fmt.Fprintln(w, "   (select all that apply)")
		}
		for j, opt := range q.Options {
			fmt.Fprintf(w, "   [%d] %s\n", j, opt)
		}
		fmt.Fprintln(w)
	}
}

func printGrade(w io.Writer, questions []quiz.Question, g *quiz.Result) {
	if g == nil {
		return
	}
	verdict := "failed"
	if g.Passed() {
		verdict = "passed"
	}
	fmt.Fprintf(w, "Score: %d/100 (%d of %d correct), %s\n\n", g.Score, g.Correct, len(questions), verdict)
	for i, q := range questions {
		mark := "✗"
		if g.PerQuestion[i] {
			mark = "✓"
		}
		fmt.Fprintf(w, "%s %d. %s\n", mark, i+1, q.Prompt)
		if q.Explanation != "" {
			fmt.Fprintf(w, "    %s\n", q.Explanation)
		}
	}
	fmt.Fprintln(w)
}

func printOutcome(w io.Writer, out *progression.Outcome) {
	if len(out.Transitions) == 0 {
		fmt.Fprintf(w, "%s: nothing changed (stage %s).\n", out.Module.ID, out.Module.Progress.Stage())
		return
	}
	for _, t := range out.Transitions {
		fmt.Fprintf(w, "%s: %s -> %s (%s)\n", t.ModuleID, t.From, t.To, t.Trigger)
	}
}

func init() {
	moduleQuizCmd.Flags().String("answers", "", "Answers as option indexes, e.g. \"0,2;1\"")
	moduleProjectCmd.Flags().String("deployed", "", "Deployed project URL")
	moduleProjectCmd.Flags().String("github", "", "Source repository URL")

	moduleCmd.AddCommand(moduleTheoryCmd)
	moduleCmd.AddCommand(moduleVideoCmd)
	moduleCmd.AddCommand(moduleQuizCmd)
	moduleCmd.AddCommand(moduleProjectCmd)
}
