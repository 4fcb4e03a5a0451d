package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/wordsrs/internal/cli"
	"github.com/example/wordsrs/internal/config"
	"github.com/example/wordsrs/internal/database"
	"github.com/example/wordsrs/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Error("failed to connect to database", "type", cfg.Database.Type, "error", err)
		return 1
	}
	defer db.Close()

	app, err := cli.New(cfg, db, log, cli.Options{Out: os.Stdout, ErrOut: os.Stderr})
	if err != nil {
		log.Error("failed to initialise", "error", err)
		return 1
	}

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		log.Error("command failed", "command", os.Args[1], "error", err)
		return 1
	}
	return 0
}
