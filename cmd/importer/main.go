package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	"storefront/internal/logger"
	"storefront/internal/repository/product"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "importer: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var filePath string
	flagSet := pflag.NewFlagSet("importer", pflag.ContinueOnError)
	flagSet.StringVarP(&filePath, "file", "f", "", "path to a product CSV (id,name,description,price,image_url)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if filePath == "" {
		flagSet.Usage()
		return errors.New("--file is required")
	}

	cfg := config.FromEnv()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, log))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		return fmt.Errorf("import failed after %d products: %w", count, err)
	}

	log.Info("import finished", "file", filePath, "products", count, "took", time.Since(start).Truncate(time.Millisecond))
	return nil
}
