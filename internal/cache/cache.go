package cache

import (
	"context"
	"time"

	"parfumpos/internal/domain"
)

// VariantCache accelerates catalog reads on the sale path. A miss is never an
// error; callers fall through to the repository.
type VariantCache interface {
	Get(ctx context.Context, id int64) (*domain.Variant, bool, error)
	Set(ctx context.Context, v *domain.Variant, ttl time.Duration) error
	Invalidate(ctx context.Context, id int64) error
	Close() error
}

// Noop is used when no Redis address is configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (*Noop) Get(context.Context, int64) (*domain.Variant, bool, error) { return nil, false, nil }

func (*Noop) Set(context.Context, *domain.Variant, time.Duration) error { return nil }

func (*Noop) Invalidate(context.Context, int64) error { return nil }

func (*Noop) Close() error { return nil }
