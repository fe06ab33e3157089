package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-task-relay/internal/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	if err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", cli.FormatError(err))
		stop()
		os.Exit(1)
	}
}
