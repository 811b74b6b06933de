package domain

import "sort"

// AllocationPlan is the outcome of splitting an order across warehouses
type AllocationPlan struct {
	Allocations       []Allocation
	TotalShippingCost float64
	StockSufficient   bool
}

type warehouseLeg struct {
	warehouse *Warehouse
	distance  float64
}

// AllocateOrder splits quantity across warehouses, nearest first.
//
// The aggregate stock precondition is checked before any allocation work:
// if the snapshot is empty or holds fewer units than requested, the plan
// reports insufficient stock and nothing else. Otherwise warehouses are
// sorted ascending by great-circle distance to the destination (stable,
// so ties keep snapshot order) and demand is satisfied greedily with
// min(remaining, stock) per leg. Shipping cost accumulates per leg as
// allocatedQty * weightKg * distanceKm * ratePerKgKm.
//
// When StockSufficient is true the allocations always sum to quantity:
// the precondition guarantees enough aggregate stock and the greedy walk
// exhausts the remaining demand.
func AllocateOrder(quantity int64, destLat, destLon float64, warehouses []*Warehouse, weightKg, ratePerKgKm float64) AllocationPlan {
	if len(warehouses) == 0 || TotalStock(warehouses) < quantity {
		return AllocationPlan{StockSufficient: false}
	}

	legs := make([]warehouseLeg, len(warehouses))
	for i, w := range warehouses {
		legs[i] = warehouseLeg{
			warehouse: w,
			distance:  DistanceKm(w.Latitude, w.Longitude, destLat, destLon),
		}
	}
	sort.SliceStable(legs, func(i, j int) bool {
		return legs[i].distance < legs[j].distance
	})

	plan := AllocationPlan{StockSufficient: true}
	remaining := quantity

	for _, leg := range legs {
		if remaining == 0 {
			break
		}
		if leg.warehouse.Stock == 0 {
			continue
		}

		allocated := remaining
		if leg.warehouse.Stock < allocated {
			allocated = leg.warehouse.Stock
		}

		plan.Allocations = append(plan.Allocations, Allocation{
			WarehouseID:   leg.warehouse.WarehouseID,
			WarehouseName: leg.warehouse.Name,
			Quantity:      allocated,
		})
		plan.TotalShippingCost += float64(allocated) * weightKg * leg.distance * ratePerKgKm
		remaining -= allocated
	}

	return plan
}
