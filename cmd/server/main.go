package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"parfumpos/internal/cache"
	"parfumpos/internal/cart"
	"parfumpos/internal/config"
	"parfumpos/internal/events"
	"parfumpos/internal/httpapi"
	"parfumpos/internal/logging"
	"parfumpos/internal/service"
	"parfumpos/internal/stock"
	"parfumpos/internal/store"
	"parfumpos/internal/store/memory"
	"parfumpos/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	logging.Init(cfg.Env)
	defer logging.Sync()
	log := logging.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error

	var repo store.Repository
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("postgres connect failed", zap.Error(err))
		}
		closers = append(closers, pg.Close)
		repo = pg
		log.Info("using postgres store")
	} else {
		repo = memory.NewSeeded()
		log.Info("using seeded in-memory store")
	}

	var variantCache cache.VariantCache = cache.NewNoop()
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("redis unavailable, continuing without variant cache", zap.Error(err))
		} else {
			closers = append(closers, rc.Close)
			variantCache = rc
			log.Info("variant cache enabled", zap.String("addr", cfg.RedisAddr))
		}
	}

	var publisher events.Publisher = events.NewNoop()
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		closers = append(closers, kp.Close)
		publisher = kp
		log.Info("event publishing enabled",
			zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	mutator := stock.NewMutator(repo, variantCache, publisher, log)
	carts := cart.NewManager(cfg.MaxCarts)
	svc := service.New(repo, mutator, carts, variantCache, publisher, log, service.Options{
		DefaultCashier: cfg.DefaultCashier,
		CacheTTL:       cfg.VariantCacheTTL,
	})
	api := httpapi.New(svc, cfg.AllowedOrigin, log)

	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error("close failed", zap.Error(err))
		}
	}
}
