package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "github.com/aretw0/onboarding/pkg/adapters/http"
	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/observability"
	"github.com/aretw0/onboarding/pkg/session"
	"github.com/aretw0/onboarding/pkg/wizards"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve wizard sessions over HTTP",
	Long:  `Starts the HTTP API: wizard sessions under /wizards, state diffs over SSE, /health, /info and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Warn("verification codes are written to stderr; plug a real ports.CodeSender for production")
		be, err := newBackend(ctx, cfg, logger, consoleSender(os.Stderr))
		if err != nil {
			return err
		}
		defer be.Close()

		hooks := observability.LogHooks(logger)
		var handlerOpts []httpAdapter.Option
		if cfg.Metrics {
			metrics, err := observability.NewMetrics()
			if err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}
			hooks = domain.MergeHooks(hooks, metrics.Hooks())
			handlerOpts = append(handlerOpts, httpAdapter.WithMetricsHandler(metrics.Handler()))
		}

		streams := httpAdapter.NewStreamManager(logger)
		sessionOpts := []session.Option{
			session.WithLogger(logger),
			session.WithLifecycleHooks(hooks),
			session.WithStaleSubmission(cfg.StaleSubmission),
			session.WithLockTTL(cfg.LockTTL),
			session.WithWizardOptions(wizards.Options{ResetCodeDispatch: cfg.ResetCodeDispatch}),
			session.WithChangeListener(streams.Publish),
		}
		if be.Locker != nil {
			sessionOpts = append(sessionOpts, session.WithLocker(be.Locker))
		}
		mgr := session.NewManager(be.Store, be.Gateway, sessionOpts...)

		handlerOpts = append(handlerOpts, httpAdapter.WithLogger(logger), httpAdapter.WithStreams(streams))
		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           httpAdapter.NewHandler(mgr, handlerOpts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting onboard server", "addr", srv.Addr, "store", cfg.Store, "wizards", mgr.Kinds())
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return srv.Close()
			}
			logger.Info("server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides config)")
}
