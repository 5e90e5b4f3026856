package catalog

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"ProductLogs/pkg/kit"
)

const (
	outcomeSuccess  = "success"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

type StoreMetrics struct {
	Operations *prometheus.CounterVec
}

func NewStoreMetrics(reg prometheus.Registerer, store Store) *StoreMetrics {
	m := &StoreMetrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_operations_total",
				Help: "Product store operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
	}

	products := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Products currently in the store",
		},
		func() float64 {
			st, err := store.Stats(context.Background())
			if err != nil {
				return 0
			}
			return float64(st.TotalProducts)
		},
	)

	lowStock := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "catalog_low_stock_products",
			Help: "Products with stock below the low-stock threshold",
		},
		func() float64 {
			st, err := store.Stats(context.Background())
			if err != nil {
				return 0
			}
			return float64(st.LowStockProducts)
		},
	)

	m.Operations = kit.Register(reg, m.Operations)
	kit.Register(reg, products)
	kit.Register(reg, lowStock)
	return m
}

func (m *StoreMetrics) observe(op, outcome string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, outcome).Inc()
}
