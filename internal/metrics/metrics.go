package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stockroom"

// Operation results used as the "result" label.
const (
	ResultOK                = "ok"
	ResultNotFound          = "not_found"
	ResultDuplicate         = "duplicate"
	ResultInvalid           = "invalid"
	ResultInsufficientStock = "insufficient_stock"
	ResultError             = "error"
)

var (
	once sync.Once

	storeOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Inventory store operations by operation and result.",
		},
		[]string{"op", "result"},
	)

	items = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "items",
		Help:      "Number of items in the store at the last listing.",
	})

	lowStockItems = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "low_stock_items",
		Help:      "Items at or below their reorder level at the last listing.",
	})

	inventoryValue = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "inventory_value",
		Help:      "Total inventory value at the last listing.",
	})
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(storeOperations, items, lowStockItems, inventoryValue)
	})
}

// IncOperation counts one store operation.
func IncOperation(op, result string) {
	storeOperations.WithLabelValues(op, result).Inc()
}

// SetInventory records the state observed by a listing.
func SetInventory(count, low int, value float64) {
	items.Set(float64(count))
	lowStockItems.Set(float64(low))
	inventoryValue.Set(value)
}
