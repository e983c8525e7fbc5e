package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"parfumpos/internal/cache"
	"parfumpos/internal/cart"
	"parfumpos/internal/events"
	"parfumpos/internal/stock"
	"parfumpos/internal/store"
)

// Service wires the catalog, the sale ledger, the stock mutator and the cart
// manager behind one API surface.
type Service struct {
	repo           store.Repository
	stock          *stock.Mutator
	carts          *cart.Manager
	cache          cache.VariantCache
	publisher      events.Publisher
	log            *zap.Logger
	defaultCashier string
	cacheTTL       time.Duration
}

type Options struct {
	DefaultCashier string
	CacheTTL       time.Duration
}

func New(repo store.Repository, mutator *stock.Mutator, carts *cart.Manager, c cache.VariantCache, publisher events.Publisher, log *zap.Logger, opts Options) *Service {
	if opts.DefaultCashier == "" {
		opts.DefaultCashier = "Caissier Principal"
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	return &Service{
		repo:           repo,
		stock:          mutator,
		carts:          carts,
		cache:          c,
		publisher:      publisher,
		log:            log,
		defaultCashier: opts.DefaultCashier,
		cacheTTL:       opts.CacheTTL,
	}
}

func (s *Service) Carts() *cart.Manager {
	return s.carts
}

// publish is best-effort. Delivery failures are logged and swallowed so a
// broker outage never blocks the till.
func (s *Service) publish(ctx context.Context, key string, event any) {
	publishCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.publisher.Publish(publishCtx, key, event); err != nil {
		s.log.Warn("event publish failed", zap.String("key", key), zap.Error(err))
	}
}
