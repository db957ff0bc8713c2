package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(nil).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
