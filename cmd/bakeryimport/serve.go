package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/bakeryimport/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web shell for starting imports and following their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr()
			}
			return runServe(cmd.Context(), a, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: SERVER_HOST:SERVER_PORT)")

	return cmd
}

func runServe(ctx context.Context, a *app, addr string) error {
	svc := a.newService()
	server := web.NewServer(svc, a.cfg)

	slog.Info("tables registered", "count", len(svc.Tables()))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		// A running import is never cancelled, so wait for it.
		if svc.Active() {
			slog.Info("waiting for import to complete")
			if err := svc.Drain(shutdownCtx); err != nil {
				slog.Warn("import did not complete in time", "error", err)
			}
		}

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
