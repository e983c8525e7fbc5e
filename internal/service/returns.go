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

// CreateReturn settles a refund or an exchange against one prior sale.
//
// Validation happens in a fixed order before any state changes: the sale must
// exist, must not already have a return, the return lines must be non-empty
// and within sold quantities, and an exchange must name in-stock replacement
// items. Requested quantities for the same sale line are pooled across
// request lines before the sold-quantity check, so splitting a line cannot
// smuggle an over-return past it.
//
// Refund lines are priced at the unit price captured on the sale. Exchange
// lines are priced at the current catalog price.
func (s *Service) CreateReturn(ctx context.Context, req domain.CreateReturnRequest) (*domain.Return, error) {
	sale, err := s.repo.FindSale(ctx, req.SaleID)
	if err != nil {
		metrics.ReturnsFailed.WithLabelValues("sale_not_found").Inc()
		return nil, err
	}

	existing, err := s.repo.FindReturnsForSale(ctx, sale.ID)
	if err != nil {
		metrics.ReturnsFailed.WithLabelValues("persistence").Inc()
		return nil, err
	}
	if len(existing) > 0 {
		metrics.ReturnsFailed.WithLabelValues("already_returned").Inc()
		return nil, domain.ErrAlreadyReturned
	}

	if len(req.ReturnItems) == 0 {
		metrics.ReturnsFailed.WithLabelValues("empty_return").Inc()
		return nil, domain.ErrEmptyReturn
	}
	if !req.OperationType.Valid() {
		metrics.ReturnsFailed.WithLabelValues("invalid_request").Inc()
		return nil, fmt.Errorf("%w: unknown operation type %q", domain.ErrInvalidRequest, req.OperationType)
	}
	if !req.Reason.Valid() {
		metrics.ReturnsFailed.WithLabelValues("invalid_request").Inc()
		return nil, fmt.Errorf("%w: unknown return reason %q", domain.ErrInvalidRequest, req.Reason)
	}
	if !req.PaymentMethod.Valid() {
		metrics.ReturnsFailed.WithLabelValues("invalid_request").Inc()
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidRequest, req.PaymentMethod)
	}

	saleItems := make(map[int64]*domain.SaleItem, len(sale.Items))
	for i := range sale.Items {
		saleItems[sale.Items[i].ID] = &sale.Items[i]
	}

	pooled := make(map[int64]int, len(req.ReturnItems))
	for _, line := range req.ReturnItems {
		if line.Quantity < 1 {
			metrics.ReturnsFailed.WithLabelValues("invalid_request").Inc()
			return nil, fmt.Errorf("%w: return quantity must be at least 1 for sale item %d", domain.ErrInvalidRequest, line.SaleItemID)
		}
		item, ok := saleItems[line.SaleItemID]
		if !ok {
			metrics.ReturnsFailed.WithLabelValues("sale_item_not_found").Inc()
			return nil, domain.NewNotFound("sale item", line.SaleItemID)
		}
		pooled[line.SaleItemID] += line.Quantity
		if pooled[line.SaleItemID] > item.Quantity {
			metrics.ReturnsFailed.WithLabelValues("over_return").Inc()
			return nil, &domain.OverReturnError{
				SaleItemID: line.SaleItemID,
				Requested:  pooled[line.SaleItemID],
				Sold:       item.Quantity,
			}
		}
	}

	now := time.Now().UTC()
	ret := domain.Return{
		SaleID:        sale.ID,
		OperationType: req.OperationType,
		Reason:        req.Reason,
		PaymentMethod: req.PaymentMethod,
		CashierName:   s.defaultCashier,
		Notes:         req.Notes,
		ReturnTotal:   domain.ZeroMoney(),
		ExchangeTotal: domain.ZeroMoney(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	restock := make(map[int64]int, len(req.ReturnItems))
	for _, line := range req.ReturnItems {
		item := saleItems[line.SaleItemID]
		subtotal := item.UnitPrice.MulQty(line.Quantity)
		ret.ReturnItems = append(ret.ReturnItems, domain.ReturnItem{
			SaleItemID: line.SaleItemID,
			Quantity:   line.Quantity,
			UnitPrice:  item.UnitPrice,
			Subtotal:   subtotal,
		})
		ret.ReturnTotal = ret.ReturnTotal.Add(subtotal)
		restock[item.VariantID] += line.Quantity
	}

	exchangeOut := make(map[int64]int, len(req.ExchangeItems))
	switch req.OperationType {
	case domain.OperationRefund:
		if len(req.ExchangeItems) > 0 {
			metrics.ReturnsFailed.WithLabelValues("invalid_request").Inc()
			return nil, fmt.Errorf("%w: a refund cannot carry exchange items", domain.ErrInvalidRequest)
		}
	case domain.OperationExchange:
		if len(req.ExchangeItems) == 0 {
			metrics.ReturnsFailed.WithLabelValues("empty_exchange").Inc()
			return nil, domain.ErrEmptyExchange
		}
		for _, line := range req.ExchangeItems {
			if line.Quantity < 1 {
				metrics.ReturnsFailed.WithLabelValues("invalid_request").Inc()
				return nil, fmt.Errorf("%w: exchange quantity must be at least 1 for variant %d", domain.ErrInvalidRequest, line.VariantID)
			}
			variant, err := s.repo.FindVariant(ctx, line.VariantID)
			if err != nil {
				metrics.ReturnsFailed.WithLabelValues("variant_not_found").Inc()
				return nil, err
			}
			exchangeOut[variant.ID] += line.Quantity
			// Replacement stock is checked before anything is persisted. Stock
			// coming back from the returned lines does not count toward it;
			// the replacement must be coverable on its own.
			if exchangeOut[variant.ID] > variant.StockQty {
				metrics.ReturnsFailed.WithLabelValues("insufficient_stock").Inc()
				return nil, &domain.InsufficientStockError{
					VariantID: variant.ID,
					SKU:       variant.SKU,
					Requested: exchangeOut[variant.ID],
					Available: variant.StockQty,
				}
			}

			subtotal := variant.PriceMAD.MulQty(line.Quantity)
			ret.ExchangeItems = append(ret.ExchangeItems, domain.ExchangeItem{
				VariantID:     variant.ID,
				VariantDetail: variant,
				Quantity:      line.Quantity,
				UnitPrice:     variant.PriceMAD,
				Subtotal:      subtotal,
			})
			ret.ExchangeTotal = ret.ExchangeTotal.Add(subtotal)
		}
	}

	// Positive difference: refund owed to the customer. Negative: the
	// customer pays the gap on the spot.
	ret.Difference = ret.ReturnTotal.Sub(ret.ExchangeTotal)

	created, err := s.repo.AppendReturn(ctx, ret)
	if err != nil {
		metrics.ReturnsFailed.WithLabelValues("persistence").Inc()
		return nil, err
	}

	// Returned goods always go back on the shelf, defective ones included;
	// quarantine is a manual follow-up, not a ledger concern.
	adjustments := make([]stock.Adjustment, 0, len(restock)+len(exchangeOut))
	for variantID, qty := range restock {
		adjustments = append(adjustments, stock.Adjustment{VariantID: variantID, Delta: qty})
	}
	for variantID, qty := range exchangeOut {
		adjustments = append(adjustments, stock.Adjustment{VariantID: variantID, Delta: -qty})
	}
	if _, err := s.stock.AdjustBatch(ctx, adjustments); err != nil {
		// The return is already on the ledger. Report the stock gap loudly
		// rather than pretend the return did not happen.
		s.log.Error("stock adjustment failed after return append",
			zap.Int64("return_id", created.ID), zap.Error(err))
		return nil, err
	}

	metrics.ReturnsCreated.Inc()
	s.log.Info("return created",
		zap.Int64("return_id", created.ID),
		zap.Int64("sale_id", created.SaleID),
		zap.String("operation_type", string(created.OperationType)),
		zap.String("difference", created.Difference.String()))

	s.publish(ctx, fmt.Sprintf("return-%d", created.ID), events.ReturnCreatedEvent{
		BaseEvent:     events.NewBase(events.TypeReturnCreated),
		ReturnID:      created.ID,
		SaleID:        created.SaleID,
		OperationType: string(created.OperationType),
		Reason:        string(created.Reason),
		ReturnTotal:   created.ReturnTotal.String(),
		ExchangeTotal: created.ExchangeTotal.String(),
		Difference:    created.Difference.String(),
	})

	return created, nil
}

func (s *Service) GetReturn(ctx context.Context, id int64) (*domain.Return, error) {
	return s.repo.FindReturn(ctx, id)
}

func (s *Service) ListReturns(ctx context.Context, filter domain.DateRange) ([]domain.Return, error) {
	return s.repo.ListReturns(ctx, filter)
}
