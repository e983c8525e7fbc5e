package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_sales_created_total",
		Help: "Completed sales.",
	})

	SalesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_sales_failed_total",
		Help: "Rejected sale attempts by reason.",
	}, []string{"reason"})

	ReturnsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_returns_created_total",
		Help: "Completed returns and exchanges.",
	})

	ReturnsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_returns_failed_total",
		Help: "Rejected return attempts by reason.",
	}, []string{"reason"})

	PurchasesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_purchases_created_total",
		Help: "Recorded supplier purchases.",
	})

	StockAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_stock_adjustments_total",
		Help: "Variant stock writes by direction.",
	}, []string{"direction"})

	InsufficientStock = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_insufficient_stock_total",
		Help: "Operations rejected because stock would go negative.",
	})
)
