package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/agrilink-hq/agrilink-client/internal/cli"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine, the environment takes over.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
