package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/edugenie/internal/performance"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show quiz history, per-topic accuracy and badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()
		out := cmd.OutOrStdout()
		ctx := cmd.Context()

		records, err := e.svc.Records.All(ctx, e.svc.User)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintf(out, "No quizzes yet for %s.\n", e.svc.User)
			return nil
		}

		fmt.Fprintf(out, "%-16s  %-28s  %7s  %5s\n", "Date", "Topic", "Score", "Pct")
		fmt.Fprintln(out, strings.Repeat("\u2500", 64))
		for _, r := range records {
			fmt.Fprintf(out, "%-16s  %-28s  %3d/%-3d  %4.0f%%\n",
				time.Unix(r.Timestamp, 0).Local().Format("2006-01-02 15:04"),
				truncate(r.Topic, 28), r.Score, r.Total, r.Ratio()*100)
		}

		fmt.Fprintln(out)
		fmt.Fprintf(out, "%-28s  %8s  %9s  %5s\n", "Topic", "Attempts", "Correct", "Pct")
		fmt.Fprintln(out, strings.Repeat("\u2500", 58))
		for _, t := range performance.TopicRatios(records) {
			fmt.Fprintf(out, "%-28s  %8d  %4d/%-4d  %4.0f%%\n",
				truncate(t.Topic, 28), t.Attempts, t.Score, t.Total, t.Ratio()*100)
		}

		xp, err := e.svc.Rewards.XP(ctx, e.svc.User)
		if err != nil {
			return err
		}
		badges, err := e.svc.Rewards.Badges(ctx, e.svc.User)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nXP: %d\n", xp)
		for _, b := range badges {
			fmt.Fprintf(out, "  %s (%s)\n", b.Name, b.Rarity)
		}
		return nil
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the top learners by XP",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		board, err := e.svc.Rewards.Leaderboard(cmd.Context(), limit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(board) == 0 {
			fmt.Fprintln(out, "No XP earned yet.")
			return nil
		}
		for i, entry := range board {
			fmt.Fprintf(out, "%3d. %-24s %8d XP\n", i+1, entry.User, entry.XP)
		}
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().IntP("limit", "n", 10, "Number of entries to show")
}
