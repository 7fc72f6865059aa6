package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/httpserver"
	"storefront/internal/logger"
	productrepo "storefront/internal/repository/product"
	cartsvc "storefront/internal/service/cart"
	productsvc "storefront/internal/service/product"
	"storefront/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer dbpool.Close()

	kv, release, err := storage.Open(ctx, cfg.Cart, dbpool)
	if err != nil {
		return fmt.Errorf("open cart store: %w", err)
	}
	defer release()

	productRepo := productrepo.NewPostgres(dbpool, log)
	productService := productsvc.New(productRepo)
	cart := cartsvc.New(ctx, cartsvc.NewStore(kv, cfg.Cart.StorageKey, log), log)

	srv, err := httpserver.New(cfg.HTTPAddr, log, httpserver.Deps{
		ProductSvc:  productService,
		Cart:        cart,
		CORSOrigins: cfg.CORSOrigins,
		ReadyChecks: map[string]httpserver.Pinger{
			"db":         dbpool,
			"cart_store": kv,
		},
	})
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.HTTPAddr, "cart_store", cfg.Cart.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		log.Info("server stopped")
		return nil
	})
	return g.Wait()
}
