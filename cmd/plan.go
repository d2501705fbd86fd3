package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/edugenie/internal/learningpath"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build a learning plan from your weakest topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		out := cmd.OutOrStdout()

		if latest, _ := cmd.Flags().GetBool("latest"); latest {
			p, err := e.svc.Plans.Latest(cmd.Context(), e.svc.User)
			if err != nil {
				return err
			}
			if p == nil {
				fmt.Fprintln(out, "No learning plan yet. Run `edugenie plan` to create one.")
				return nil
			}
			fmt.Fprintf(out, "Plan from %s\n\n%s\n", p.GeneratedAt.Local().Format("2006-01-02 15:04"), p.Plan)
			return nil
		}

		days, _ := cmd.Flags().GetInt("days")
		res, err := e.svc.Plans.Run(cmd.Context(), e.svc.User, days)
		if res == nil {
			return err
		}
		if len(res.WeakTopics) > 0 {
			fmt.Fprintf(out, "Focus topics: %s\n\n", strings.Join(res.WeakTopics, ", "))
		}
		fmt.Fprintln(out, res.Plan)
		if res.StarterTopic != "" {
			fmt.Fprintf(out, "\nStarter quiz on %s:\n", res.StarterTopic)
			for i, q := range res.StarterQuiz {
				fmt.Fprintf(out, "  %d. %s\n", i+1, q.Prompt)
			}
			fmt.Fprintf(out, "\nTake it with: edugenie quiz %q\n", res.StarterTopic)
		}
		return err
	},
}

func init() {
	planCmd.Flags().Int("days", learningpath.DefaultDays, "Plan length in days")
	planCmd.Flags().Bool("latest", false, "Show the last saved plan instead of generating one")
}
