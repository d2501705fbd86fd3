package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/edugenie/internal/tutor"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the tutor a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		reply, err := e.svc.Tutor.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize notes into bullet points and flashcards",
	Long:  "Summarize the given file, or stdin when no file (or \"-\") is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		text, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read notes: %w", err)
		}

		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		out, err := tutor.Summarize(cmd.Context(), e.svc.Gateway, string(text))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
		return nil
	},
}
