package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"parfumpos/internal/domain"
	"parfumpos/internal/events"
	"parfumpos/internal/metrics"
	"parfumpos/internal/stock"
)

// CreatePurchase records a supplier delivery and increments stock. Unlike
// sales, purchase unit prices come from the request; the supplier invoice is
// the source of truth, not the retail catalog.
func (s *Service) CreatePurchase(ctx context.Context, req domain.CreatePurchaseRequest) (*domain.Purchase, error) {
	if req.SupplierName == "" {
		return nil, fmt.Errorf("%w: supplier name is required", domain.ErrInvalidRequest)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: purchase must include at least one item", domain.ErrInvalidRequest)
	}

	now := time.Now().UTC()
	purchase := domain.Purchase{
		SupplierName: req.SupplierName,
		Notes:        req.Notes,
		TotalAmount:  domain.ZeroMoney(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	adjustments := make([]stock.Adjustment, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1 for variant %d", domain.ErrInvalidRequest, line.VariantID)
		}
		if line.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: unit price cannot be negative for variant %d", domain.ErrInvalidRequest, line.VariantID)
		}
		variant, err := s.repo.FindVariant(ctx, line.VariantID)
		if err != nil {
			return nil, err
		}

		subtotal := line.UnitPrice.MulQty(line.Quantity)
		purchase.Items = append(purchase.Items, domain.PurchaseItem{
			VariantID:     variant.ID,
			VariantDetail: variant,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			Subtotal:      subtotal,
		})
		purchase.TotalAmount = purchase.TotalAmount.Add(subtotal)
		adjustments = append(adjustments, stock.Adjustment{VariantID: variant.ID, Delta: line.Quantity})
	}

	created, err := s.repo.AppendPurchase(ctx, purchase)
	if err != nil {
		return nil, err
	}

	if _, err := s.stock.AdjustBatch(ctx, adjustments); err != nil {
		s.log.Error("stock adjustment failed after purchase append",
			zap.Int64("purchase_id", created.ID), zap.Error(err))
		return nil, err
	}

	metrics.PurchasesCreated.Inc()
	s.log.Info("purchase recorded",
		zap.Int64("purchase_id", created.ID),
		zap.String("supplier", created.SupplierName),
		zap.String("total", created.TotalAmount.String()))

	s.publish(ctx, fmt.Sprintf("purchase-%d", created.ID), events.PurchaseReceivedEvent{
		BaseEvent:    events.NewBase(events.TypePurchaseReceived),
		PurchaseID:   created.ID,
		SupplierName: created.SupplierName,
		TotalAmount:  created.TotalAmount.String(),
		LineCount:    len(created.Items),
	})

	return created, nil
}

func (s *Service) GetPurchase(ctx context.Context, id int64) (*domain.Purchase, error) {
	return s.repo.FindPurchase(ctx, id)
}

func (s *Service) ListPurchases(ctx context.Context, filter domain.DateRange) ([]domain.Purchase, error) {
	return s.repo.ListPurchases(ctx, filter)
}
