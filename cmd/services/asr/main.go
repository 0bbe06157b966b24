package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/xilidan/transcriber/pkg/logger"
)

func main() {
	log := logger.Default()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error("asr service failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
