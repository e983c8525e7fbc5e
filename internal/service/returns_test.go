package service

import (
	"context"
	"errors"
	"testing"

	"parfumpos/internal/domain"
)

func TestCreateReturnRefund(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sale := mustSale(t, svc, domain.CreateSaleItem{VariantID: 1, Quantity: 2})

	ret, err := svc.CreateReturn(ctx, domain.CreateReturnRequest{
		SaleID:        sale.ID,
		ReturnItems:   []domain.CreateReturnItem{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
		OperationType: domain.OperationRefund,
		Reason:        domain.ReasonCustomerRequest,
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("CreateReturn: %v", err)
	}

	if got := ret.ReturnTotal.String(); got != "149.99" {
		t.Errorf("return total = %s, want 149.99", got)
	}
	if got := ret.ExchangeTotal.String(); got != "0.00" {
		t.Errorf("exchange total = %s, want 0.00", got)
	}
	if got := ret.Difference.String(); got != "149.99" {
		t.Errorf("difference = %s, want 149.99", got)
	}
	// 24 seeded, minus 2 sold, plus 1 returned.
	if got := mustStock(t, svc, 1); got != 23 {
		t.Errorf("stock = %d, want 23", got)
	}
}

func TestCreateReturnExchange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sale := mustSale(t, svc, domain.CreateSaleItem{VariantID: 2, Quantity: 1})

	ret, err := svc.CreateReturn(ctx, domain.CreateReturnRequest{
		SaleID:        sale.ID,
		ReturnItems:   []domain.CreateReturnItem{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
		ExchangeItems: []domain.CreateExchangeItem{{VariantID: 8, Quantity: 1}},
		OperationType: domain.OperationExchange,
		Reason:        domain.ReasonWrongItem,
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("CreateReturn: %v", err)
	}

	if got := ret.ReturnTotal.String(); got != "219.00" {
		t.Errorf("return total = %s, want 219.00", got)
	}
	if got := ret.ExchangeTotal.String(); got != "179.00" {
		t.Errorf("exchange total = %s, want 179.00", got)
	}
	// Positive difference: 40.00 back to the customer.
	if got := ret.Difference.String(); got != "40.00" {
		t.Errorf("difference = %s, want 40.00", got)
	}
	if got := mustStock(t, svc, 2); got != 16 {
		t.Errorf("returned variant stock = %d, want back to 16", got)
	}
	if got := mustStock(t, svc, 8); got != 29 {
		t.Errorf("exchange variant stock = %d, want 29", got)
	}
}

func TestCreateReturnSecondReturnRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sale := mustSale(t, svc, domain.CreateSaleItem{VariantID: 1, Quantity: 2})
	req := domain.CreateReturnRequest{
		SaleID:        sale.ID,
		ReturnItems:   []domain.CreateReturnItem{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
		OperationType: domain.OperationRefund,
		Reason:        domain.ReasonOther,
		PaymentMethod: domain.PaymentCash,
	}

	if _, err := svc.CreateReturn(ctx, req); err != nil {
		t.Fatalf("first CreateReturn: %v", err)
	}
	_, err := svc.CreateReturn(ctx, req)
	if !errors.Is(err, domain.ErrAlreadyReturned) {
		t.Fatalf("err = %v, want ErrAlreadyReturned", err)
	}
	// State frozen at the first return's outcome.
	if got := mustStock(t, svc, 1); got != 23 {
		t.Errorf("stock = %d, want 23", got)
	}
}

func TestCreateReturnOverReturnRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sale := mustSale(t, svc, domain.CreateSaleItem{VariantID: 1, Quantity: 1})

	_, err := svc.CreateReturn(ctx, domain.CreateReturnRequest{
		SaleID:        sale.ID,
		ReturnItems:   []domain.CreateReturnItem{{SaleItemID: sale.Items[0].ID, Quantity: 2}},
		OperationType: domain.OperationRefund,
		Reason:        domain.ReasonCustomerRequest,
		PaymentMethod: domain.PaymentCash,
	})

	var overReturn *domain.OverReturnError
	if !errors.As(err, &overReturn) {
		t.Fatalf("err = %v, want OverReturnError", err)
	}
	if overReturn.Requested != 2 || overReturn.Sold != 1 {
		t.Errorf("error detail = %+v, want requested 2 sold 1", overReturn)
	}
	if got := mustStock(t, svc, 1); got != 23 {
		t.Errorf("stock = %d, want 23 (sale applied, return not)", got)
	}
}

func TestCreateReturnPoolsQuantitiesAcrossLines(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sale := mustSale(t, svc, domain.CreateSaleItem{VariantID: 1, Quantity: 3})

	// Each line fits on its own but they pool to 4 against 3 sold. Splitting
	// a line must not get past the sold-quantity check.
	_, err := svc.CreateReturn(ctx, domain.CreateReturnRequest{
		SaleID: sale.ID,
		ReturnItems: []domain.CreateReturnItem{
			{SaleItemID: sale.Items[0].ID, Quantity: 2},
			{SaleItemID: sale.Items[0].ID, Quantity: 2},
		},
		OperationType: domain.OperationRefund,
		Reason:        domain.ReasonCustomerRequest,
		PaymentMethod: domain.PaymentCash,
	})

	var overReturn *domain.OverReturnError
	if !errors.As(err, &overReturn) {
		t.Fatalf("err = %v, want OverReturnError", err)
	}
	if overReturn.Requested != 4 || overReturn.Sold != 3 {
		t.Errorf("error detail = %+v, want pooled 4 against 3", overReturn)
	}
}

func TestCreateReturnEmptyItemsRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sale := mustSale(t, svc, domain.CreateSaleItem{VariantID: 1, Quantity: 1})

	_, err := svc.CreateReturn(ctx, domain.CreateReturnRequest{
		SaleID:        sale.ID,
		OperationType: domain.OperationRefund,
		Reason:        domain.ReasonOther,
		PaymentMethod: domain.PaymentCash,
	})
	if !errors.Is(err, domain.ErrEmptyReturn) {
		t.Fatalf("err = %v, want ErrEmptyReturn", err)
	}
}

func TestCreateReturnUnknownSale(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateReturn(context.Background(), domain.CreateReturnRequest{
		SaleID:        999,
		ReturnItems:   []domain.CreateReturnItem{{SaleItemID: 1, Quantity: 1}},
		OperationType: domain.OperationRefund,
		Reason:        domain.ReasonOther,
		PaymentMethod: domain.PaymentCash,
	})
	var notFound *domain.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestCreateReturnExchangeRequiresItems(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sale := mustSale(t, svc, domain.CreateSaleItem{VariantID: 1, Quantity: 1})

	_, err := svc.CreateReturn(ctx, domain.CreateReturnRequest{
		SaleID:        sale.ID,
		ReturnItems:   []domain.CreateReturnItem{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
		OperationType: domain.OperationExchange,
		Reason:        domain.ReasonWrongItem,
		PaymentMethod: domain.PaymentCash,
	})
	if !errors.Is(err, domain.ErrEmptyExchange) {
		t.Fatalf("err = %v, want ErrEmptyExchange", err)
	}
}

func TestCreateReturnRefundRejectsExchangeItems(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sale := mustSale(t, svc, domain.CreateSaleItem{VariantID: 1, Quantity: 1})

	_, err := svc.CreateReturn(ctx, domain.CreateReturnRequest{
		SaleID:        sale.ID,
		ReturnItems:   []domain.CreateReturnItem{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
		ExchangeItems: []domain.CreateExchangeItem{{VariantID: 8, Quantity: 1}},
		OperationType: domain.OperationRefund,
		Reason:        domain.ReasonCustomerRequest,
		PaymentMethod: domain.PaymentCash,
	})
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestCreateReturnExchangeInsufficientStock(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	sale := mustSale(t, svc, domain.CreateSaleItem{VariantID: 1, Quantity: 1})

	// Variant 9 is out of stock; the exchange must fail before anything is
	// persisted or restocked.
	_, err := svc.CreateReturn(ctx, domain.CreateReturnRequest{
		SaleID:        sale.ID,
		ReturnItems:   []domain.CreateReturnItem{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
		ExchangeItems: []domain.CreateExchangeItem{{VariantID: 9, Quantity: 1}},
		OperationType: domain.OperationExchange,
		Reason:        domain.ReasonWrongItem,
		PaymentMethod: domain.PaymentCash,
	})

	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if got := mustStock(t, svc, 1); got != 23 {
		t.Errorf("stock = %d, want 23 (no restock on failure)", got)
	}
	returns, err := repo.ListReturns(ctx, domain.DateRange{})
	if err != nil {
		t.Fatalf("ListReturns: %v", err)
	}
	if len(returns) != 0 {
		t.Errorf("returns persisted = %d, want 0", len(returns))
	}
}

func TestCreateReturnDefectiveStillRestocks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sale := mustSale(t, svc, domain.CreateSaleItem{VariantID: 6, Quantity: 1})

	_, err := svc.CreateReturn(ctx, domain.CreateReturnRequest{
		SaleID:        sale.ID,
		ReturnItems:   []domain.CreateReturnItem{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
		OperationType: domain.OperationRefund,
		Reason:        domain.ReasonDefective,
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("CreateReturn: %v", err)
	}
	if got := mustStock(t, svc, 6); got != 20 {
		t.Errorf("stock = %d, want 20 (defective items restock too)", got)
	}
}

func TestCreateReturnUsesSaleTimePrices(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	sale := mustSale(t, svc, domain.CreateSaleItem{VariantID: 3, Quantity: 1})

	// Ledger refunds settle at the captured unit price, not whatever the
	// catalog says later.
	storedSale, err := repo.FindSale(ctx, sale.ID)
	if err != nil {
		t.Fatalf("FindSale: %v", err)
	}
	if got := storedSale.Items[0].UnitPrice.String(); got != "349.00" {
		t.Fatalf("captured unit price = %s, want 349.00", got)
	}

	ret, err := svc.CreateReturn(ctx, domain.CreateReturnRequest{
		SaleID:        sale.ID,
		ReturnItems:   []domain.CreateReturnItem{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
		OperationType: domain.OperationRefund,
		Reason:        domain.ReasonCustomerRequest,
		PaymentMethod: domain.PaymentCash,
	})
	if err != nil {
		t.Fatalf("CreateReturn: %v", err)
	}
	if got := ret.ReturnItems[0].UnitPrice.String(); got != "349.00" {
		t.Errorf("refund unit price = %s, want captured 349.00", got)
	}
}
