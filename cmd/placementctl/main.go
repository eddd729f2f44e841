package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/noah-isme/campus-placement-api/internal/cli"
	"github.com/noah-isme/campus-placement-api/internal/server"
	"github.com/noah-isme/campus-placement-api/migrations"
	"github.com/noah-isme/campus-placement-api/pkg/config"
	"github.com/noah-isme/campus-placement-api/pkg/database"
	"github.com/noah-isme/campus-placement-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(load).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func load(ctx context.Context) (*cli.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	deps, err := server.BuildDependencies(ctx, cfg, logr)
	if err != nil {
		_ = logr.Sync()
		return nil, err
	}

	return &cli.App{
		Roster: deps.Roster,
		Admins: deps.Auth,
		Migrate: func(ctx context.Context) ([]string, error) {
			return database.Migrate(ctx, deps.DB, migrations.Files, logr)
		},
		Close: func() {
			deps.Close()
			_ = logr.Sync()
		},
	}, nil
}
