package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWarehouse(t *testing.T, name string, lat, lon float64, stock int64) *Warehouse {
	t.Helper()
	w, err := NewWarehouse(name, lat, lon, stock)
	require.NoError(t, err)
	return w
}

func allocationSum(allocations []Allocation) int64 {
	var sum int64
	for _, a := range allocations {
		sum += a.Quantity
	}
	return sum
}

func TestAllocateOrderEmptySnapshot(t *testing.T) {
	plan := AllocateOrder(5, 0, 0, nil, 0.2, 0.01)

	assert.False(t, plan.StockSufficient)
	assert.Empty(t, plan.Allocations)
	assert.Equal(t, 0.0, plan.TotalShippingCost)
}

func TestAllocateOrderInsufficientAggregateStock(t *testing.T) {
	warehouses := []*Warehouse{
		testWarehouse(t, "Berlin", 52.52, 13.405, 1),
		testWarehouse(t, "Munich", 48.137, 11.575, 2),
	}

	plan := AllocateOrder(5, 52.52, 13.405, warehouses, 0.2, 0.01)

	assert.False(t, plan.StockSufficient)
	assert.Empty(t, plan.Allocations)
}

func TestAllocateOrderSingleWarehouse(t *testing.T) {
	warehouses := []*Warehouse{
		testWarehouse(t, "Berlin", 52.52, 13.405, 100),
	}

	plan := AllocateOrder(10, 52.52, 13.405, warehouses, 0.2, 0.01)

	require.True(t, plan.StockSufficient)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, int64(10), plan.Allocations[0].Quantity)
	assert.Equal(t, "Berlin", plan.Allocations[0].WarehouseName)
	assert.Equal(t, 0.0, plan.TotalShippingCost)
}

func TestAllocateOrderNearestFirst(t *testing.T) {
	// Destination is Berlin; Hamburg is nearer than Munich.
	warehouses := []*Warehouse{
		testWarehouse(t, "Munich", 48.137, 11.575, 50),
		testWarehouse(t, "Hamburg", 53.551, 9.994, 50),
	}

	plan := AllocateOrder(30, 52.52, 13.405, warehouses, 0.2, 0.01)

	require.True(t, plan.StockSufficient)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "Hamburg", plan.Allocations[0].WarehouseName)
	assert.Equal(t, int64(30), plan.Allocations[0].Quantity)
}

func TestAllocateOrderSpillsToFartherWarehouse(t *testing.T) {
	// Nearer warehouse holds 1 unit, farther holds 10; a request for 2
	// draws 1 from each, and the split ships cheaper than sourcing both
	// units from the far warehouse.
	dest := [2]float64{52.52, 13.405}
	near := testWarehouse(t, "Hamburg", 53.551, 9.994, 1)
	far := testWarehouse(t, "Munich", 48.137, 11.575, 10)

	plan := AllocateOrder(2, dest[0], dest[1], []*Warehouse{near, far}, 0.2, 0.01)

	require.True(t, plan.StockSufficient)
	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "Hamburg", plan.Allocations[0].WarehouseName)
	assert.Equal(t, int64(1), plan.Allocations[0].Quantity)
	assert.Equal(t, "Munich", plan.Allocations[1].WarehouseName)
	assert.Equal(t, int64(1), plan.Allocations[1].Quantity)

	farOnly := AllocateOrder(2, dest[0], dest[1], []*Warehouse{far}, 0.2, 0.01)
	require.True(t, farOnly.StockSufficient)
	assert.Less(t, plan.TotalShippingCost, farOnly.TotalShippingCost)
}

func TestAllocateOrderSkipsEmptyWarehouses(t *testing.T) {
	warehouses := []*Warehouse{
		testWarehouse(t, "Hamburg", 53.551, 9.994, 0),
		testWarehouse(t, "Munich", 48.137, 11.575, 5),
	}

	plan := AllocateOrder(3, 53.551, 9.994, warehouses, 0.2, 0.01)

	require.True(t, plan.StockSufficient)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "Munich", plan.Allocations[0].WarehouseName)
}

func TestAllocateOrderTieBreakKeepsSnapshotOrder(t *testing.T) {
	// Two warehouses at the same coordinates: equal distance, so the one
	// appearing first in the snapshot is drawn from first.
	warehouses := []*Warehouse{
		testWarehouse(t, "Alpha", 10, 10, 3),
		testWarehouse(t, "Beta", 10, 10, 3),
	}

	plan := AllocateOrder(4, 0, 0, warehouses, 0.2, 0.01)

	require.True(t, plan.StockSufficient)
	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "Alpha", plan.Allocations[0].WarehouseName)
	assert.Equal(t, int64(3), plan.Allocations[0].Quantity)
	assert.Equal(t, "Beta", plan.Allocations[1].WarehouseName)
	assert.Equal(t, int64(1), plan.Allocations[1].Quantity)
}

func TestAllocateOrderSumsToQuantity(t *testing.T) {
	warehouses := []*Warehouse{
		testWarehouse(t, "Hamburg", 53.551, 9.994, 7),
		testWarehouse(t, "Munich", 48.137, 11.575, 11),
		testWarehouse(t, "Cologne", 50.937, 6.96, 13),
	}

	for _, quantity := range []int64{1, 7, 8, 18, 31} {
		plan := AllocateOrder(quantity, 52.52, 13.405, warehouses, 0.2, 0.01)
		require.True(t, plan.StockSufficient, "quantity %d", quantity)
		assert.Equal(t, quantity, allocationSum(plan.Allocations))

		for _, alloc := range plan.Allocations {
			assert.Positive(t, alloc.Quantity)
			for _, w := range warehouses {
				if w.WarehouseID == alloc.WarehouseID {
					assert.LessOrEqual(t, alloc.Quantity, w.Stock)
				}
			}
		}
	}
}

func TestAllocateOrderShippingCostPerLeg(t *testing.T) {
	dest := [2]float64{52.52, 13.405}
	hamburg := testWarehouse(t, "Hamburg", 53.551, 9.994, 5)
	munich := testWarehouse(t, "Munich", 48.137, 11.575, 5)
	weightKg, rate := 0.2, 0.01

	plan := AllocateOrder(8, dest[0], dest[1], []*Warehouse{hamburg, munich}, weightKg, rate)
	require.True(t, plan.StockSufficient)

	dHamburg := DistanceKm(hamburg.Latitude, hamburg.Longitude, dest[0], dest[1])
	dMunich := DistanceKm(munich.Latitude, munich.Longitude, dest[0], dest[1])
	expected := 5*weightKg*dHamburg*rate + 3*weightKg*dMunich*rate

	assert.InDelta(t, expected, plan.TotalShippingCost, 1e-9)
}
