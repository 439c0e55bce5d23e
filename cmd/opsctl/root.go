package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/iacol-backend/internal/app"
	"github.com/angelmondragon/iacol-backend/pkg/config"
	"github.com/angelmondragon/iacol-backend/pkg/db"
	"github.com/angelmondragon/iacol-backend/pkg/db/models"
	"github.com/angelmondragon/iacol-backend/pkg/logger"
)

var logLevel string

// env holds what every subcommand needs once config has loaded.
type env struct {
	cfg      *config.Config
	logg     *logger.Logger
	db       *db.Client
	services *app.Services
}

func (e *env) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "opsctl",
		Short:         "Operational tasks for the iacol backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newCreateSuperuserCmd())
	cmd.AddCommand(newCheckDashboardCmd())
	cmd.AddCommand(newCreateAPIKeyCmd())
	return cmd
}

// withEnv loads config, opens the database and runs fn with the wired services.
func withEnv(ctx context.Context, fn func(ctx context.Context, e *env) error) (err error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := logLevel
	if level == "" {
		level = cfg.App.LogLevel
	}
	logg := logger.New(logger.Options{ServiceName: "opsctl", Level: logger.ParseLevel(level), Console: true})

	client, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	e := &env{cfg: cfg, logg: logg, db: client}
	defer func() { err = multierr.Append(err, e.Close()) }()

	if e.services, err = app.Build(app.Params{Config: cfg, Logger: logg, DB: client.DB()}); err != nil {
		return err
	}
	return fn(ctx, e)
}

func findUser(ctx context.Context, e *env, email string) (*models.User, error) {
	user, err := e.services.Users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no user with email %s", email)
	}
	return user, err
}
