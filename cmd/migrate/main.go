package main

// Create and seed the catalog table:
//   DATABASE_URL=postgres://... go run ./cmd/migrate
//   DATABASE_URL=sqlite://./data/catalog.db go run ./cmd/migrate

import (
	"context"
	"os"

	"calorievision-backend/internal/shared/config"
	"calorievision-backend/internal/shared/storage/db"
	"calorievision-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	target, err := db.Resolve(cfg.DatabaseURL)
	if err != nil {
		telemetry.Error("migrate.config", map[string]any{"err": err})
		os.Exit(1)
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("migrate.connect", map[string]any{"err": err, "driver": target.Driver})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, target.Dialect); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"err": err, "driver": target.Driver})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"driver": target.Driver})
}
