package main

import (
	"context"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logger"
	"storefront/internal/migrate"
)

func main() {
	cfg := config.FromEnv()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With("cmd", "migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatal("connect db", "error", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		log.Fatal("apply migrations", "error", err)
	}

	version, dirty, err := migrate.Version(ctx, pool)
	if err != nil {
		log.Fatal("read schema version", "error", err)
	}
	log.Info("migrations applied", "version", version, "dirty", dirty)
}
