// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/pwpolicy/internal/checker"
	"github.com/holomush/pwpolicy/internal/config"
	"github.com/holomush/pwpolicy/internal/httpapi"
	"github.com/holomush/pwpolicy/internal/logging"
	"github.com/holomush/pwpolicy/internal/observability"
	"github.com/holomush/pwpolicy/pkg/errutil"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the password feedback HTTP API",
		Long: `Serve the password feedback HTTP API and, unless --metrics-addr is empty,
the metrics and health endpoints.

  POST /v1/password/evaluate   {"password": "...", "policy": {"minLength": 10}}
  GET  /v1/password/rules`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logging.SetDefault("pwpolicy", version, cfg.Log.Format)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd)
		},
	}

	addPolicyFlags(cmd)
	cmd.Flags().String("addr", config.DefaultServerAddr, "HTTP API listen address")
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "log format (json or text)")

	return cmd
}

// runServe runs the servers until ctx is done or a server fails.
func runServe(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	policy := cfg.PasswordPolicy()
	slog.InfoContext(ctx, "starting password API",
		"addr", cfg.Server.Addr,
		"metrics_addr", cfg.Metrics.Addr,
		"min_length", policy.MinLength,
		"tier", policy.Tier,
	)

	var ready atomic.Bool
	checkerOpts := []checker.Option{checker.WithLogger(slog.Default())}
	handlerOpts := []httpapi.HandlerOption{httpapi.WithHandlerLogger(slog.Default())}

	var obsServer *observability.Server
	var obsErrCh <-chan error
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, ready.Load)
		errCh, err := obsServer.Start()
		if err != nil {
			return oops.Wrapf(err, "starting observability server")
		}
		obsErrCh = errCh
		checkerOpts = append(checkerOpts, checker.WithRecorder(obsServer.Metrics()))
		handlerOpts = append(handlerOpts, httpapi.WithRequestRecorder(obsServer.Metrics()))
	}

	handler := httpapi.NewHandler(checker.New(policy, checkerOpts...), handlerOpts...)
	apiServer := httpapi.NewServer(cfg.Server.Addr, handler)
	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopServer(obsServer)
		return oops.Wrapf(err, "starting password API server")
	}
	ready.Store(true)

	cmd.Println("Password API listening on " + apiServer.Addr())

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("received shutdown signal")
	case serveErr := <-apiErrCh:
		runErr = oops.Wrapf(serveErr, "password API server failed")
	case serveErr := <-obsErrCh:
		runErr = oops.Wrapf(serveErr, "observability server failed")
	}

	ready.Store(false)
	slog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		errutil.LogError(slog.Default(), "error stopping password API server", err)
	}
	stopServer(obsServer)

	slog.Info("shutdown complete")
	return runErr
}

func stopServer(s *observability.Server) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		errutil.LogError(slog.Default(), "error stopping observability server", err)
	}
}
