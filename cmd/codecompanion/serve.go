package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codefionn/codecompanion/internal/consts"
	"github.com/codefionn/codecompanion/internal/logger"
	"github.com/codefionn/codecompanion/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.ListenAddr
			}

			svc, store, cleanup, err := a.service()
			if err != nil {
				return err
			}
			defer cleanup()

			opts := web.Options{
				Addr:         addr,
				Flows:        svc,
				HistoryLimit: a.cfg.HistoryLimit,
			}
			if store != nil {
				opts.History = store
			}

			srv, err := web.NewServer(opts)
			if err != nil {
				return err
			}
			if err := srv.Start(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Code Companion is running at %s (model %s)\n", srv.URL(), svc.ModelName())

			<-cmd.Context().Done()
			logger.Info("shutdown requested")

			ctx, cancel := context.WithTimeout(context.Background(), consts.Timeout5Seconds)
			defer cancel()
			return srv.Stop(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
