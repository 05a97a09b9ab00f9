//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/abrezinsky/contestvote/internal/logger"
)

// listenForControlSignals lets operators adjust logging on a running server:
// SIGUSR1 toggles request logging and SIGUSR2 cycles the log level.
func listenForControlSignals(ctx context.Context, appLog logger.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigs:
			switch sig {
			case syscall.SIGUSR1:
				appLog.Info("Request logging toggled", "enabled", appLog.ToggleRequestLogging())
			case syscall.SIGUSR2:
				appLog.Warn("Log level changed", "level", appLog.CycleLevel().String())
			}
		}
	}
}
