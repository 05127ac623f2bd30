package app

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/elskow/identity-infra/identity"
	"github.com/elskow/identity-infra/internal/database"
)

// Module combines everything the binaries need
func Module() fx.Option {
	return fx.Options(
		// Logger
		fx.Provide(newLogger),

		// Configuration
		fx.Provide(LoadConfig),

		// Database
		database.Module(),

		// Identity stores
		identity.Module(),
	)
}

func newLogger() (*zap.Logger, error) {
	env := os.Getenv("APP_ENV")
	return NewLogger(env)
}

// EnsureSchema applies the identity schema to the configured database.
func EnsureSchema(db *gorm.DB, log *zap.Logger) error {
	if err := identity.AutoMigrate(db); err != nil {
		return err
	}
	log.Info("identity schema up to date")
	return nil
}

// ReportReady verifies connectivity and then stops the app; the main
// binary is a setup and health tool, not a daemon.
func ReportReady(
	lifecycle fx.Lifecycle,
	shutdowner fx.Shutdowner,
	db *gorm.DB,
	log *zap.Logger,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			log.Info("identity store ready")
			return shutdowner.Shutdown()
		},
	})
}
