package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/session"
	"github.com/abhisek/edugenie/internal/store"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <topic>",
	Short: "Take an adaptive quiz in line mode",
	Long: "Take a multiple-choice quiz without the full-screen UI. Answers are read\n" +
		"one per line from stdin as a letter, number or the option text.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		lvlFlag, _ := cmd.Flags().GetString("difficulty")
		level, err := difficulty.Parse(lvlFlag)
		if err != nil {
			return err
		}
		n, _ := cmd.Flags().GetInt("questions")
		if n == 0 {
			n = e.cfg.Quiz.Questions
		}
		fixed, _ := cmd.Flags().GetBool("fixed")

		sess := e.svc.NewSession(fixed)
		if err := sess.Start(cmd.Context(), e.svc.User, strings.Join(args, " "), level, n); err != nil {
			return err
		}
		return playQuiz(cmd, sess, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func playQuiz(cmd *cobra.Command, sess *session.Session, in io.Reader, out io.Writer) error {
	snap := sess.Snapshot()
	fmt.Fprintf(out, "%s quiz · %s", snap.Topic, snap.Effective)
	if snap.Effective != snap.Requested {
		fmt.Fprintf(out, " (adapted from %s)", snap.Requested)
	}
	fmt.Fprintln(out)
	if snap.Placeholder {
		fmt.Fprintln(out, "The model is unavailable; these are sample questions.")
	}

	scanner := bufio.NewScanner(in)
	for i, q := range snap.Questions {
		fmt.Fprintf(out, "\nQ%d. %s\n", i+1, q.Prompt)
		for j, opt := range q.Options {
			fmt.Fprintf(out, "  %c) %s\n", 'A'+rune(j), opt)
		}
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return fmt.Errorf("quiz abandoned after %d of %d questions", i, len(snap.Questions))
		}

		res, err := sess.SubmitAnswer(cmd.Context(), i, strings.TrimSpace(scanner.Text()))
		if err != nil && !store.IsPersistence(err) {
			return err
		}
		if res.Correct {
			fmt.Fprintln(out, "Correct!", res.Feedback)
		} else {
			fmt.Fprintln(out, "Not quite.", res.Feedback)
		}
		if q.Explanation != "" {
			fmt.Fprintln(out, "  "+q.Explanation)
		}
		if err != nil {
			fmt.Fprintln(out, "Warning: result not saved:", err)
		}
	}

	final := sess.Snapshot()
	fmt.Fprintf(out, "\nScore: %d/%d (%.0f%%)\n", final.Score, len(final.Questions), final.Accuracy*100)
	if a := final.Award; a != nil {
		fmt.Fprintf(out, "%s %s: +%d XP\n", a.Rarity.Icon(), a.Rarity.DisplayName(), a.XP)
		if a.Badge != nil {
			fmt.Fprintf(out, "New badge: %s\n", a.Badge.Name)
		}
	}
	return nil
}

func init() {
	quizCmd.Flags().StringP("difficulty", "d", "easy", "Requested difficulty: easy, medium, hard")
	quizCmd.Flags().IntP("questions", "n", 0, "Number of questions (defaults to quiz.questions)")
	quizCmd.Flags().Bool("fixed", false, "Keep the requested difficulty instead of adapting it")
}
