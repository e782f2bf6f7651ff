// Package main is the entry point for the dpclient CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dpclient/internal/backend/dotproject"
	"dpclient/internal/cli"
	"dpclient/internal/commands"
	"dpclient/internal/config"
	"dpclient/internal/exitcode"
	"dpclient/internal/logging"
	"dpclient/internal/store"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitcode.UserError)
	}

	logger := logging.New(os.Stderr, cfg.Debug)
	st := store.New(cfg.Path, store.WithLogger(logger))
	submitters := dotproject.NewFactory(
		dotproject.WithTimeout(cfg.Timeout),
		dotproject.WithLogger(logger),
	)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, st, submitters, logger)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
