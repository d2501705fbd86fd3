package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/edugenie/internal/app"
)

// runApp builds the environment and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := newEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()
	return app.Run(e.svc)
}
