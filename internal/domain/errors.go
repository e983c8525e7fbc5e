package domain

import (
	"errors"
	"fmt"
)

// All domain errors carry messages fit for direct operator display.
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrEmptyCart       = errors.New("cannot create a sale with no items")
	ErrEmptyReturn     = errors.New("return must include at least one item")
	ErrEmptyExchange   = errors.New("exchange must include at least one replacement item")
	ErrAlreadyReturned = errors.New("sale already has a return")
	ErrTooManyCarts    = errors.New("maximum number of open carts reached")
	ErrLastCart        = errors.New("cannot remove the last remaining cart")
)

type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func NewNotFound(kind string, id int64) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// InsufficientStockError is raised before any mutation; no partial stock
// movement ever accompanies it.
type InsufficientStockError struct {
	VariantID int64
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	name := e.SKU
	if name == "" {
		name = fmt.Sprintf("variant %d", e.VariantID)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", name, e.Requested, e.Available)
}

type OverReturnError struct {
	SaleItemID int64
	Requested  int
	Sold       int
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("cannot return more than sold quantity for sale item %d: requested %d, sold %d", e.SaleItemID, e.Requested, e.Sold)
}
