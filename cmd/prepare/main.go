package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"authordedup.kddcup.org/internal/logging"
)

func main() {
	cfg, err := ParseArgs(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		exit(err)
	}

	app, err := BuildApplication(*cfg, os.Stdout)
	if err != nil {
		exit(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	_, err = app.Run(ctx)
	stop()
	if err != nil {
		logging.LogError(app.Logger, "prepare failed", err)
		app.Close()
		exit(err)
	}
	app.Close()
}
