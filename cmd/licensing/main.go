package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// cancelled on SIGTERM/SIGINT so the API server can shut down cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
