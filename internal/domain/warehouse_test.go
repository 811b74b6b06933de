package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWarehouse(t *testing.T) {
	w, err := NewWarehouse("Berlin", 52.52, 13.405, 500)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(w.WarehouseID, "WH-"))
	assert.Equal(t, "Berlin", w.Name)
	assert.Equal(t, int64(500), w.Stock)
	assert.False(t, w.CreatedAt.IsZero())
}

func TestNewWarehouseValidation(t *testing.T) {
	cases := []struct {
		name      string
		whName    string
		lat, lon  float64
		stock     int64
		wantError error
	}{
		{"empty name", "", 0, 0, 0, ErrEmptyWarehouseName},
		{"latitude too high", "A", 90.1, 0, 0, ErrInvalidLatitude},
		{"latitude too low", "A", -90.1, 0, 0, ErrInvalidLatitude},
		{"longitude too high", "A", 0, 180.1, 0, ErrInvalidLongitude},
		{"longitude too low", "A", 0, -180.1, 0, ErrInvalidLongitude},
		{"negative stock", "A", 0, 0, -1, ErrNegativeStock},
		{"stock above cap", "A", 0, 0, MaxWarehouseStock + 1, ErrStockCapExceeded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewWarehouse(tc.whName, tc.lat, tc.lon, tc.stock)
			assert.ErrorIs(t, err, tc.wantError)
		})
	}
}

func TestNewWarehouseBoundaryCoordinates(t *testing.T) {
	for _, c := range [][2]float64{{90, 180}, {-90, -180}, {0, 0}} {
		_, err := NewWarehouse("Edge", c[0], c[1], 0)
		assert.NoError(t, err)
	}
}

func TestTotalStock(t *testing.T) {
	warehouses := []*Warehouse{
		testWarehouse(t, "A", 0, 0, 3),
		testWarehouse(t, "B", 0, 0, 0),
		testWarehouse(t, "C", 0, 0, 9),
	}

	assert.Equal(t, int64(12), TotalStock(warehouses))
	assert.Equal(t, int64(0), TotalStock(nil))
}
