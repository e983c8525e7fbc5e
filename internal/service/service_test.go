package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"parfumpos/internal/cache"
	"parfumpos/internal/cart"
	"parfumpos/internal/domain"
	"parfumpos/internal/events"
	"parfumpos/internal/stock"
	"parfumpos/internal/store/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	repo := memory.NewSeeded()
	noopCache := cache.NewNoop()
	publisher := events.NewNoop()
	log := zap.NewNop()
	mutator := stock.NewMutator(repo, noopCache, publisher, log)
	carts := cart.NewManager(3)
	svc := New(repo, mutator, carts, noopCache, publisher, log, Options{
		DefaultCashier: "Caissier Principal",
		CacheTTL:       time.Minute,
	})
	return svc, repo
}

func mustStock(t *testing.T, svc *Service, variantID int64) int {
	t.Helper()
	v, err := svc.GetVariant(context.Background(), variantID)
	if err != nil {
		t.Fatalf("GetVariant(%d): %v", variantID, err)
	}
	return v.StockQty
}

func mustSale(t *testing.T, svc *Service, items ...domain.CreateSaleItem) *domain.Sale {
	t.Helper()
	sale, err := svc.CreateSale(context.Background(), domain.CreateSaleRequest{
		Items:         items,
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	return sale
}
