//go:build windows

package main

import (
	"context"

	"github.com/abrezinsky/contestvote/internal/logger"
)

// listenForControlSignals is a no-op on Windows, which has no SIGUSR1/2.
func listenForControlSignals(ctx context.Context, appLog logger.Logger) {
	<-ctx.Done()
}
