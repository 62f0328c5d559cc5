// Package main is the entry point for blogctl, the operator CLI.
package main

import (
	"context"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/cmd/blogctl/internal/commands"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/app"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/config"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/database/migration"
	"github.com/zero-filtre/zerofiltre-blog-backend-sub004/internal/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.Log, cfg.Location())

	root := commands.NewRoot(func(ctx context.Context) (*commands.Backend, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return open(ctx, cfg, log)
	})
	if err := root.ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Error("blogctl failed")
		os.Exit(1)
	}
}

func open(ctx context.Context, cfg *config.AppConfig, log *logrus.Logger) (*commands.Backend, error) {
	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &commands.Backend{
		Migrate: func(ctx context.Context) error {
			return migration.EnsureMigrated(ctx, a.DB, log, cfg.Database.Host)
		},
		Users: a.Services.Users,
		Tips:  a.Services.Tips,
		Close: a.Close,
	}, nil
}
