package main

import (
	"context"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logger"
	"storefront/internal/repository/product"
	"storefront/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()
	log = log.With("cmd", "seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatal("connect db", "error", err)
	}
	defer pool.Close()

	n, err := seed.Apply(ctx, product.NewPostgres(pool, log))
	if err != nil {
		log.Fatal("seed apply", "error", err)
	}

	log.Info("seed applied", "products", n)
}
