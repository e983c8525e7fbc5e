package store

import (
	"context"
	"fmt"

	"parfumpos/internal/domain"
)

// Repository is the storage boundary. Two guards must be race-free inside the
// implementation, not merely checked by callers: WriteVariantStock never
// persists a negative quantity, and AppendReturn is an atomic check-and-insert
// that admits at most one return per sale.
type Repository interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)

	ListPerfumes(ctx context.Context, filter domain.PerfumeFilter) ([]domain.Perfume, error)
	FindPerfume(ctx context.Context, id int64) (*domain.Perfume, error)

	ListVariants(ctx context.Context, filter domain.VariantFilter) ([]domain.Variant, error)
	FindVariant(ctx context.Context, id int64) (*domain.Variant, error)
	// WriteVariantStock persists the new quantity plus the derived flags and
	// updated_at, and returns the stored variant.
	WriteVariantStock(ctx context.Context, id int64, qty int) (*domain.Variant, error)

	FindSale(ctx context.Context, id int64) (*domain.Sale, error)
	ListSales(ctx context.Context, filter domain.DateRange) ([]domain.Sale, error)
	// AppendSale assigns the monotonic sale id and line item ids.
	AppendSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)

	FindReturn(ctx context.Context, id int64) (*domain.Return, error)
	ListReturns(ctx context.Context, filter domain.DateRange) ([]domain.Return, error)
	FindReturnsForSale(ctx context.Context, saleID int64) ([]domain.Return, error)
	// AppendReturn fails with domain.ErrAlreadyReturned when a return for the
	// same sale already exists.
	AppendReturn(ctx context.Context, ret domain.Return) (*domain.Return, error)

	FindPurchase(ctx context.Context, id int64) (*domain.Purchase, error)
	ListPurchases(ctx context.Context, filter domain.DateRange) ([]domain.Purchase, error)
	AppendPurchase(ctx context.Context, purchase domain.Purchase) (*domain.Purchase, error)
}

// PersistenceError wraps any storage failure (connection, serialization).
// It propagates unchanged; retry policy belongs to the transport, not here.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func WrapPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
