// Package shutdown runs a blocking component until it returns or the process
// is asked to stop.
package shutdown

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Signals are the signals that start a graceful shutdown.
var Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

// RunWithGracefulShutdown runs runner until it returns on its own, or until a
// shutdown signal arrives. On a signal the runner's context is cancelled,
// shutdown is called, and the runner gets up to timeout to finish.
// A runner ending with context.Canceled after a signal is a clean exit.
func RunWithGracefulShutdown(
	ctx context.Context,
	logger *slog.Logger,
	timeout time.Duration,
	runner func(ctx context.Context) error,
	shutdown func(ctx context.Context) error,
) error {
	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()

	runDone := make(chan error, 1)
	go func() {
		runDone <- runner(runCtx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, Signals...)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("received signal, initiating shutdown", "signal", sig)
		runCancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}

		select {
		case err := <-runDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
		case <-shutdownCtx.Done():
			logger.Warn("shutdown timeout exceeded", "timeout", timeout)
		}

		logger.Info("shutdown complete")
		return nil

	case err := <-runDone:
		return err
	}
}
