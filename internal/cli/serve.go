package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"surfsup-server/internal/app"
)

func newServeCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  s.runServe,
	}
	cmd.Flags().StringVar(&s.addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	return cmd
}

func (s *state) runServe(cmd *cobra.Command, args []string) error {
	s.logger.Info("starting",
		"app", appName,
		"version", s.version,
		"env", s.cfg.AppEnv,
		"log_level", s.cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, s.cfg, s.logger); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("run failed", "err", err)
		return err
	}

	s.logger.Info("shutting down")
	return nil
}
