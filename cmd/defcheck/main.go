// Package main is the entry point for the defcheck CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/thoreinstein/defcheck/cmd/defcheck/commands"
	"github.com/thoreinstein/defcheck/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.Execute(ctx)
	stop()

	if err != nil {
		commands.PrintError(os.Stderr, err)
	}
	os.Exit(errors.ExitCode(err))
}
