package service

import (
	"context"
	"errors"
	"testing"

	"parfumpos/internal/domain"
)

func TestCreatePurchaseIncrementsStock(t *testing.T) {
	svc, _ := newTestService(t)

	purchase, err := svc.CreatePurchase(context.Background(), domain.CreatePurchaseRequest{
		SupplierName: "Parfums Atlas SARL",
		Items: []domain.CreatePurchaseItem{
			{VariantID: 9, Quantity: 10, UnitPrice: domain.MustMoney("120.00")},
			{VariantID: 7, Quantity: 5, UnitPrice: domain.MustMoney("250.50")},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}

	if got := purchase.TotalAmount.String(); got != "2452.50" {
		t.Errorf("total = %s, want 2452.50", got)
	}
	if got := mustStock(t, svc, 9); got != 10 {
		t.Errorf("variant 9 stock = %d, want 10", got)
	}
	if got := mustStock(t, svc, 7); got != 9 {
		t.Errorf("variant 7 stock = %d, want 9", got)
	}

	// Receiving above the threshold clears the low stock flag.
	v, err := svc.GetVariant(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetVariant: %v", err)
	}
	if v.IsLowStock {
		t.Error("variant 7 still flagged low stock after receiving")
	}
}

func TestCreatePurchaseRequiresSupplier(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreatePurchase(context.Background(), domain.CreatePurchaseRequest{
		Items: []domain.CreatePurchaseItem{{VariantID: 1, Quantity: 1, UnitPrice: domain.MustMoney("50.00")}},
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestCreatePurchaseRequiresItems(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreatePurchase(context.Background(), domain.CreatePurchaseRequest{
		SupplierName: "Parfums Atlas SARL",
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestCreatePurchaseRejectsNegativePrice(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreatePurchase(context.Background(), domain.CreatePurchaseRequest{
		SupplierName: "Parfums Atlas SARL",
		Items:        []domain.CreatePurchaseItem{{VariantID: 1, Quantity: 1, UnitPrice: domain.MustMoney("-5.00")}},
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}
