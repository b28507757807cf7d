package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/go-kit/log/level"
	"github.com/oklog/run"
	"github.com/spf13/cobra"

	"github.com/Glenn-2k/holidaze/internal/config"
	"github.com/Glenn-2k/holidaze/internal/web"
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireWeb(); err != nil {
				return err
			}

			logger := newLogger()
			ctx := cmd.Context()

			d, store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()
			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}

			client := newClient(cfg, logger)
			cookies := web.NewCookieManager(cfg.CookieHashKey, cfg.CookieBlockKey)
			server, err := web.NewServer(client, store, cookies, fetchPolicy(cfg), logger)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           server.Routes(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			var g run.Group
			g.Add(func() error {
				level.Info(logger).Log("msg", "http server listening", "addr", cfg.ListenAddr)
				return srv.ListenAndServe()
			}, func(error) {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			})
			g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

			err = g.Run()
			var sigErr run.SignalError
			if errors.As(err, &sigErr) || errors.Is(err, http.ErrServerClosed) {
				level.Info(logger).Log("msg", "server stopped")
				return nil
			}
			return err
		},
	}
}
