package stock

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"parfumpos/internal/cache"
	"parfumpos/internal/domain"
	"parfumpos/internal/events"
	"parfumpos/internal/metrics"
	"parfumpos/internal/store"
)

// Adjustment is a signed delta against one variant's on-hand quantity.
type Adjustment struct {
	VariantID int64
	Delta     int
}

// Mutator is the single owner of stock writes. Every quantity change in the
// system flows through Adjust or AdjustBatch so the derived flags and the
// non-negative invariant are enforced in one place.
type Mutator struct {
	repo      store.Repository
	cache     cache.VariantCache
	publisher events.Publisher
	log       *zap.Logger
}

func NewMutator(repo store.Repository, c cache.VariantCache, publisher events.Publisher, log *zap.Logger) *Mutator {
	return &Mutator{repo: repo, cache: c, publisher: publisher, log: log}
}

func (m *Mutator) Adjust(ctx context.Context, variantID int64, delta int) (*domain.Variant, error) {
	updated, err := m.AdjustBatch(ctx, []Adjustment{{VariantID: variantID, Delta: delta}})
	if err != nil {
		return nil, err
	}
	return updated[0], nil
}

// AdjustBatch applies all deltas or none. Deltas targeting the same variant
// are merged first, then every resulting quantity is validated before any
// write happens, so a failing line cannot leave earlier lines applied.
func (m *Mutator) AdjustBatch(ctx context.Context, adjustments []Adjustment) ([]*domain.Variant, error) {
	merged := make(map[int64]int, len(adjustments))
	order := make([]int64, 0, len(adjustments))
	for _, adj := range adjustments {
		if _, seen := merged[adj.VariantID]; !seen {
			order = append(order, adj.VariantID)
		}
		merged[adj.VariantID] += adj.Delta
	}
	// Deterministic write order keeps concurrent batches from deadlocking in
	// SQL backends.
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	variants := make(map[int64]*domain.Variant, len(order))
	for _, id := range order {
		v, err := m.repo.FindVariant(ctx, id)
		if err != nil {
			return nil, err
		}
		if next := v.StockQty + merged[id]; next < 0 {
			metrics.InsufficientStock.Inc()
			return nil, &domain.InsufficientStockError{
				VariantID: v.ID,
				SKU:       v.SKU,
				Requested: -merged[id],
				Available: v.StockQty,
			}
		}
		variants[id] = v
	}

	out := make([]*domain.Variant, 0, len(order))
	for _, id := range order {
		prior := variants[id]
		updated, err := m.repo.WriteVariantStock(ctx, id, prior.StockQty+merged[id])
		if err != nil {
			return nil, err
		}
		if err := m.cache.Invalidate(ctx, id); err != nil {
			m.log.Warn("variant cache invalidation failed", zap.Int64("variant_id", id), zap.Error(err))
		}
		direction := "increase"
		if merged[id] < 0 {
			direction = "decrease"
		}
		metrics.StockAdjustments.WithLabelValues(direction).Inc()
		if !prior.IsLowStock && updated.IsLowStock {
			m.notifyLowStock(ctx, updated)
		}
		out = append(out, updated)
	}
	return out, nil
}

func (m *Mutator) notifyLowStock(ctx context.Context, v *domain.Variant) {
	event := events.StockLowEvent{
		BaseEvent: events.NewBase(events.TypeStockLowThreshold),
		VariantID: v.ID,
		SKU:       v.SKU,
		StockQty:  v.StockQty,
		Threshold: v.LowStockThreshold,
	}
	publishCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := m.publisher.Publish(publishCtx, v.SKU, event); err != nil {
		m.log.Warn("low stock event publish failed", zap.String("sku", v.SKU), zap.Error(err))
	}
}
