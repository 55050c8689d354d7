package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/reldb-io/reldb/cmd/reldb/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
