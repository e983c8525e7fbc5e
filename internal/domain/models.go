package domain

import "time"

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Perfume struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	Gender         Gender    `json:"gender"`
	Image          string    `json:"image,omitempty"`
	IsActive       bool      `json:"is_active"`
	CategoryID     int64     `json:"category"`
	CategoryDetail *Category `json:"category_detail,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Variants       []Variant `json:"variants,omitempty"`
}

// Variant is one sellable size of a perfume. IsInStock and IsLowStock are
// derived from StockQty and must only be recomputed through SetStock so the
// flags can never drift from the quantity.
type Variant struct {
	ID                int64     `json:"id"`
	PerfumeID         int64     `json:"perfume"`
	PerfumeDetail     *Perfume  `json:"perfume_detail,omitempty"`
	SizeML            int       `json:"size_ml"`
	SKU               string    `json:"sku"`
	Barcode           string    `json:"barcode"`
	PriceMAD          Money     `json:"price_mad"`
	CompareAtPrice    *Money    `json:"compare_at_price,omitempty"`
	StockQty          int       `json:"stock_qty"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	IsInStock         bool      `json:"is_in_stock"`
	IsLowStock        bool      `json:"is_low_stock"`
}

// SetStock applies a new quantity and recomputes the derived flags.
func (v *Variant) SetStock(qty int, at time.Time) {
	v.StockQty = qty
	v.IsInStock = qty > 0
	v.IsLowStock = qty > 0 && qty <= v.LowStockThreshold
	v.UpdatedAt = at
}

type SaleItem struct {
	ID            int64    `json:"id"`
	SaleID        int64    `json:"sale"`
	VariantID     int64    `json:"variant"`
	VariantDetail *Variant `json:"variant_detail,omitempty"`
	Quantity      int      `json:"quantity"`
	UnitPrice     Money    `json:"unit_price"`
	Subtotal      Money    `json:"subtotal"`
}

type Sale struct {
	ID            int64         `json:"id"`
	Items         []SaleItem    `json:"items"`
	TotalAmount   Money         `json:"total_amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	CashierName   string        `json:"cashier_name"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type ReturnItem struct {
	ID             int64     `json:"id"`
	SaleItemID     int64     `json:"sale_item"`
	SaleItemDetail *SaleItem `json:"sale_item_detail,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPrice      Money     `json:"unit_price"`
	Subtotal       Money     `json:"subtotal"`
}

type ExchangeItem struct {
	VariantID     int64    `json:"variant"`
	VariantDetail *Variant `json:"variant_detail,omitempty"`
	Quantity      int      `json:"quantity"`
	UnitPrice     Money    `json:"unit_price"`
	Subtotal      Money    `json:"subtotal"`
}

// Return settles against exactly one prior sale. Difference is positive when
// the shop owes the customer, negative when the customer owes the shop.
type Return struct {
	ID            int64          `json:"id"`
	SaleID        int64          `json:"sale"`
	SaleDetail    *Sale          `json:"sale_detail,omitempty"`
	ReturnItems   []ReturnItem   `json:"return_items"`
	ExchangeItems []ExchangeItem `json:"exchange_items,omitempty"`
	ReturnTotal   Money          `json:"return_total"`
	ExchangeTotal Money          `json:"exchange_total"`
	Difference    Money          `json:"difference"`
	OperationType OperationType  `json:"operation_type"`
	Reason        ReturnReason   `json:"reason"`
	PaymentMethod PaymentMethod  `json:"payment_method"`
	CashierName   string         `json:"cashier_name"`
	Notes         string         `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type PurchaseItem struct {
	VariantID     int64    `json:"variant"`
	VariantDetail *Variant `json:"variant_detail,omitempty"`
	Quantity      int      `json:"quantity"`
	UnitPrice     Money    `json:"unit_price"`
	Subtotal      Money    `json:"subtotal"`
}

type Purchase struct {
	ID           int64          `json:"id"`
	SupplierName string         `json:"supplier_name"`
	Items        []PurchaseItem `json:"items"`
	TotalAmount  Money          `json:"total_amount"`
	Notes        string         `json:"notes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type CreateSaleItem struct {
	VariantID int64 `json:"variant"`
	Quantity  int   `json:"quantity"`
}

type CreateSaleRequest struct {
	Items         []CreateSaleItem `json:"items"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	CashierName   string           `json:"cashier_name,omitempty"`
}

type CreateReturnItem struct {
	SaleItemID int64 `json:"sale_item"`
	Quantity   int   `json:"quantity"`
}

type CreateExchangeItem struct {
	VariantID int64 `json:"variant"`
	Quantity  int   `json:"quantity"`
}

type CreateReturnRequest struct {
	SaleID        int64                `json:"sale"`
	ReturnItems   []CreateReturnItem   `json:"return_items"`
	ExchangeItems []CreateExchangeItem `json:"exchange_items,omitempty"`
	OperationType OperationType        `json:"operation_type"`
	Reason        ReturnReason         `json:"reason"`
	PaymentMethod PaymentMethod        `json:"payment_method"`
	Notes         string               `json:"notes,omitempty"`
}

type CreatePurchaseItem struct {
	VariantID int64 `json:"variant"`
	Quantity  int   `json:"quantity"`
	UnitPrice Money `json:"unit_price"`
}

type CreatePurchaseRequest struct {
	SupplierName string               `json:"supplier_name"`
	Items        []CreatePurchaseItem `json:"items"`
	Notes        string               `json:"notes,omitempty"`
}

type PerfumeFilter struct {
	CategoryID int64
	Search     string
}

type VariantFilter struct {
	PerfumeID   int64
	Search      string
	Barcode     string
	InStockOnly bool
}

// DateRange filters by creation time. Zero bounds are unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}
