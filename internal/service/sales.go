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

// CreateSale validates the whole request before any state changes. Prices
// come from the catalog at commit time, never from the client. Stock is
// decremented first; only a fully applied decrement is followed by the ledger
// append.
func (s *Service) CreateSale(ctx context.Context, req domain.CreateSaleRequest) (*domain.Sale, error) {
	if len(req.Items) == 0 {
		metrics.SalesFailed.WithLabelValues("empty_cart").Inc()
		return nil, domain.ErrEmptyCart
	}
	if !req.PaymentMethod.Valid() {
		metrics.SalesFailed.WithLabelValues("invalid_payment").Inc()
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidRequest, req.PaymentMethod)
	}

	now := time.Now().UTC()
	sale := domain.Sale{
		PaymentMethod: req.PaymentMethod,
		CashierName:   req.CashierName,
		CreatedAt:     now,
		UpdatedAt:     now,
		TotalAmount:   domain.ZeroMoney(),
	}
	if sale.CashierName == "" {
		sale.CashierName = s.defaultCashier
	}

	adjustments := make([]stock.Adjustment, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity < 1 {
			metrics.SalesFailed.WithLabelValues("invalid_quantity").Inc()
			return nil, fmt.Errorf("%w: quantity must be at least 1 for variant %d", domain.ErrInvalidRequest, line.VariantID)
		}
		variant, err := s.repo.FindVariant(ctx, line.VariantID)
		if err != nil {
			metrics.SalesFailed.WithLabelValues("variant_not_found").Inc()
			return nil, err
		}

		subtotal := variant.PriceMAD.MulQty(line.Quantity)
		sale.Items = append(sale.Items, domain.SaleItem{
			VariantID:     variant.ID,
			VariantDetail: variant,
			Quantity:      line.Quantity,
			UnitPrice:     variant.PriceMAD,
			Subtotal:      subtotal,
		})
		sale.TotalAmount = sale.TotalAmount.Add(subtotal)
		adjustments = append(adjustments, stock.Adjustment{VariantID: variant.ID, Delta: -line.Quantity})
	}

	// The mutator re-validates pooled quantities against current stock and
	// applies all decrements or none.
	if _, err := s.stock.AdjustBatch(ctx, adjustments); err != nil {
		metrics.SalesFailed.WithLabelValues("insufficient_stock").Inc()
		return nil, err
	}

	created, err := s.repo.AppendSale(ctx, sale)
	if err != nil {
		// Stock is already decremented. Surface the inconsistency instead of
		// guessing at compensation.
		metrics.SalesFailed.WithLabelValues("persistence").Inc()
		s.log.Error("sale append failed after stock decrement",
			zap.String("total", sale.TotalAmount.String()), zap.Error(err))
		return nil, err
	}

	metrics.SalesCreated.Inc()
	s.log.Info("sale created",
		zap.Int64("sale_id", created.ID),
		zap.String("total", created.TotalAmount.String()),
		zap.String("payment_method", string(created.PaymentMethod)))

	event := events.SaleCreatedEvent{
		BaseEvent:     events.NewBase(events.TypeSaleCreated),
		SaleID:        created.ID,
		TotalAmount:   created.TotalAmount.String(),
		PaymentMethod: string(created.PaymentMethod),
		CashierName:   created.CashierName,
	}
	for _, item := range created.Items {
		line := events.SaleLine{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
		}
		if item.VariantDetail != nil {
			line.SKU = item.VariantDetail.SKU
		}
		event.Lines = append(event.Lines, line)
	}
	s.publish(ctx, fmt.Sprintf("sale-%d", created.ID), event)

	return created, nil
}

func (s *Service) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	return s.repo.FindSale(ctx, id)
}

func (s *Service) ListSales(ctx context.Context, filter domain.DateRange) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx, filter)
}

// CheckoutCart turns an open cart into a sale, then discards the cart. The
// cart's quantities are requests; prices and availability are re-resolved by
// CreateSale against the catalog.
func (s *Service) CheckoutCart(ctx context.Context, cartID int64, payment domain.PaymentMethod, cashier string) (*domain.Sale, error) {
	c, err := s.carts.Get(cartID)
	if err != nil {
		return nil, err
	}

	req := domain.CreateSaleRequest{PaymentMethod: payment, CashierName: cashier}
	for _, item := range c.Items {
		req.Items = append(req.Items, domain.CreateSaleItem{
			VariantID: item.Variant.ID,
			Quantity:  item.Quantity,
		})
	}

	sale, err := s.CreateSale(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Complete(cartID); err != nil {
		s.log.Warn("cart cleanup after checkout failed", zap.Int64("cart_id", cartID), zap.Error(err))
	}
	return sale, nil
}
