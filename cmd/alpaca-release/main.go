package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NB-TUDelft/alpaca-kernel-2/internal/cli"
)

func main() {
	// An interrupt stops the pipeline between stages; the in-flight tool is
	// allowed to finish and report its exit status.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
