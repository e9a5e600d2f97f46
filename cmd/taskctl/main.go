package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/yukikurage/task-sphere/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
