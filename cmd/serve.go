package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/edugenie/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = e.cfg.Server.Addr
		}

		srv := api.New(api.Deps{
			Records:   e.svc.Records,
			Gateway:   e.svc.Gateway,
			Generator: e.svc.Generator,
			Grader:    e.svc.Grader,
			Adapter:   e.svc.Adapter,
			Rewards:   e.svc.Rewards,
			Plans:     e.svc.Plans,
			Metrics:   e.metrics,
			Logger:    e.logger,
		}, api.Config{
			CORSOrigins:      e.cfg.Server.CORSOrigins,
			SessionTTL:       e.cfg.Server.SessionTTL,
			DefaultQuestions: e.cfg.Quiz.Questions,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (defaults to server.addr)")
}
