package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/auditkit/auditkit/internal/api"
	"github.com/auditkit/auditkit/internal/audit"
	"github.com/auditkit/auditkit/internal/collector"
	"github.com/auditkit/auditkit/internal/config"
	"github.com/auditkit/auditkit/internal/metrics"
	"github.com/auditkit/auditkit/internal/store"
	"github.com/auditkit/auditkit/internal/ws"
)

func NewServeCmd() *cobra.Command {
	var configPath string
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the audit API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; explicit --env-file must exist.
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load env file %q: %w", envFile, err)
				}
			} else {
				godotenv.Load() //nolint:errcheck
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			level := new(slog.LevelVar)
			level.Set(parseLevel(cfg.Log.Level))
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			slog.Info("auditkit server starting",
				"config", configPath,
				"http_port", cfg.Server.HTTPPort,
				"broadcast_interval", cfg.Server.BroadcastInterval,
				"audit_ttl", cfg.Server.Audits.TTL,
			)

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			reg := metrics.NewRegistry()
			client := collector.NewWithCredentials(collector.Credentials{
				PSIKey:      cfg.Credentials.PSIKey(),
				GitHubToken: cfg.Credentials.GitHubToken(),
			})
			runner := audit.New(client, reg)
			st := store.New(cfg.Server.Audits.TTL)
			hub := ws.New(st, cfg.Server.BroadcastInterval)

			mux := http.NewServeMux()
			mux.Handle("/api/", api.New(runner, st, logger))
			mux.Handle("/ws/stream", hub)
			mux.Handle("/metrics", reg)

			httpSrv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}

			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				st.Run(gctx)
				return nil
			})
			g.Go(func() error {
				hub.Run(gctx)
				return nil
			})
			g.Go(func() error {
				// Hot-reloads the log level; other fields need a restart.
				return config.Watch(gctx, configPath, func(next *config.Config) {
					level.Set(parseLevel(next.Log.Level))
				})
			})
			g.Go(func() error {
				slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
				if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				slog.Info("auditkit server shutting down")
				shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
				defer stop()
				return httpSrv.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "Path to config file")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load environment variables from this file (defaults to .env if present)")
	return cmd
}

// parseLevel maps a config level string to a slog level. Unknown strings
// fall back to info; config validation rejects them earlier anyway.
func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
