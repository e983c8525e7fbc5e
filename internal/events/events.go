package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TypeSaleCreated       = "sale.created"
	TypeReturnCreated     = "return.created"
	TypePurchaseReceived  = "purchase.received"
	TypeStockLowThreshold = "stock.low"
)

// BaseEvent is the envelope shared by every published event.
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBase(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

type SaleCreatedEvent struct {
	BaseEvent
	SaleID        int64          `json:"sale_id"`
	TotalAmount   string         `json:"total_amount"`
	PaymentMethod string         `json:"payment_method"`
	CashierName   string         `json:"cashier_name"`
	Lines         []SaleLine     `json:"lines"`
}

type SaleLine struct {
	VariantID int64  `json:"variant_id"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type ReturnCreatedEvent struct {
	BaseEvent
	ReturnID      int64  `json:"return_id"`
	SaleID        int64  `json:"sale_id"`
	OperationType string `json:"operation_type"`
	Reason        string `json:"reason"`
	ReturnTotal   string `json:"return_total"`
	ExchangeTotal string `json:"exchange_total"`
	Difference    string `json:"difference"`
}

type PurchaseReceivedEvent struct {
	BaseEvent
	PurchaseID   int64  `json:"purchase_id"`
	SupplierName string `json:"supplier_name"`
	TotalAmount  string `json:"total_amount"`
	LineCount    int    `json:"line_count"`
}

type StockLowEvent struct {
	BaseEvent
	VariantID int64  `json:"variant_id"`
	SKU       string `json:"sku"`
	StockQty  int    `json:"stock_qty"`
	Threshold int    `json:"threshold"`
}

// Publisher delivers events best-effort. A failed publish never fails the
// business operation that produced it.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
	Close() error
}

type NoopPublisher struct{}

func NewNoop() *NoopPublisher { return &NoopPublisher{} }

func (*NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (*NoopPublisher) Close() error { return nil }
