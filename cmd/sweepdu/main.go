package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sweepdu/internal/app"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := app.Execute(ctx, version)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "sweepdu:", err)
		os.Exit(1)
	}
}
