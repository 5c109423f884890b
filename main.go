package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/vocab/internal/cli"
)

func main() {
	// Cancel running sessions, the bot and the scheduler on Ctrl+C
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
