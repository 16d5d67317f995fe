package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	before := testutil.ToFloat64(storeOperations.WithLabelValues("add", ResultOK))
	assert.NotPanics(t, func() {
		IncOperation("add", ResultOK)
	})
	assert.Equal(t, before+1, testutil.ToFloat64(storeOperations.WithLabelValues("add", ResultOK)))

	SetInventory(3, 1, 102.5)
	assert.Equal(t, float64(3), testutil.ToFloat64(items))
	assert.Equal(t, float64(1), testutil.ToFloat64(lowStockItems))
	assert.Equal(t, 102.5, testutil.ToFloat64(inventoryValue))
}
