package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/zeusync/circuit/internal/core/observability/log"
	"github.com/zeusync/circuit/internal/injector"
	"github.com/zeusync/circuit/internal/settings"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	s, err := settings.Load(args, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "circuit:", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := injector.InitializeApp(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, "circuit:", err)
		return 1
	}
	defer cleanup()
	defer func() { _ = app.Logger.Sync() }()

	app.Logger.Info("running races",
		log.String("race", app.Race.Name),
		log.Int("sessions", s.Sessions),
		log.Int("workers", s.Workers),
		log.Uint64("seed", s.Seed),
	)
	outcomes, err := app.Runner.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			app.Logger.Warn("interrupted")
		} else {
			app.Logger.Error("race batch failed", log.Error(err))
		}
	}

	if rerr := report(ctx, os.Stdout, app.Race.Name, outcomes, app.Store, s.Leaderboard); rerr != nil {
		app.Logger.Error("report", log.Error(rerr))
		return 1
	}
	if err != nil {
		return 1
	}
	return 0
}
