package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gonkalabs/decomment/internal/api"
)

func newServeCmd(f *flags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stripper over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f, ".")
			if err != nil {
				return &exitError{code: 2, err: err}
			}
			if addr != "" {
				cfg.ListenAddr = addr
			}
			closeLog, err := setupLogging(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return &exitError{code: 2, err: err}
			}
			defer closeLog()

			eng, opts, _, err := buildEngine(cfg)
			if err != nil {
				return &exitError{code: 2, err: err}
			}

			mux := http.NewServeMux()
			api.New(eng, opts).Register(mux)

			srv := &http.Server{
				Addr:         cfg.ListenAddr,
				Handler:      mux,
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 120 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Graceful shutdown
			go func() {
				<-ctx.Done()
				slog.Info("shutting down")

				shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer shutCancel()

				if err := srv.Shutdown(shutCtx); err != nil {
					slog.Error("shutdown error", "err", err)
				}
			}()

			slog.Info("starting server",
				"addr", cfg.ListenAddr,
				"profiles", len(eng.Profiles().Profiles()),
				"keepDirectives", eng.Keep().Len(),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :$PORT or :8080)")
	return cmd
}
