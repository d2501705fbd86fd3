package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "edugenie",
	Short: "AI tutor: chat, summaries, adaptive quizzes and learning plans",
	Long: "EduGenie is an AI study companion. It answers questions, summarizes notes,\n" +
		"runs adaptive multiple-choice quizzes and builds learning plans from your\n" +
		"quiz history. Without a configured model it keeps working with sample content.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides EDUGENIE_DB and store.dsn)")
	pf.String("config", "", "Path to a YAML config file")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.StringP("user", "u", "", "Learner name (defaults to quiz.user)")

	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
