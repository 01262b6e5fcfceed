package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	apihttp "github.com/feedasfor-cyber/expense-management-app/internal/http"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, ctx, cleanup, err := initContext()
	if err != nil {
		return err
	}
	defer cleanup()

	addr := cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	service := apihttp.NewHTTPService(ctx)
	server := &http.Server{
		Addr:              addr,
		Handler:           service.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		ctx.Logger.Info("Starting the server", zap.String("addr", addr), zap.String("environment", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			ctx.Logger.Error("Failed to start the server", zap.Error(err))
			return err
		}
		return nil
	case <-sigCtx.Done():
	}

	ctx.Logger.Info("Shutting down the server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		ctx.Logger.Error("Failed to shut down the server", zap.Error(err))
		return err
	}
	return nil
}
