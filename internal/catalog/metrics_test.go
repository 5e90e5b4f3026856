package catalog_test

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"ProductLogs/internal/catalog"
)

func TestStoreMetrics_GaugesFollowStore(t *testing.T) {
	s, _ := newStore(t)
	reg := prometheus.NewRegistry()
	catalog.NewStoreMetrics(reg, s)

	expected := func(products, low int) string {
		return strings.NewReplacer("{P}", strconv.Itoa(products), "{L}", strconv.Itoa(low)).Replace(`
# HELP catalog_low_stock_products Products with stock below the low-stock threshold
# TYPE catalog_low_stock_products gauge
catalog_low_stock_products {L}
# HELP catalog_products Products currently in the store
# TYPE catalog_products gauge
catalog_products {P}
`)
	}

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected(0, 0)),
		"catalog_products", "catalog_low_stock_products"))

	mustCreate(t, s, sneaker())
	p := mustCreate(t, s, catalog.CreateRequest{Name: "Plenty", StockQuantity: 10})

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected(2, 1)),
		"catalog_products", "catalog_low_stock_products"))

	require.NoError(t, s.Delete(context.Background(), p.ID))
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected(1, 1)),
		"catalog_products", "catalog_low_stock_products"))
}
