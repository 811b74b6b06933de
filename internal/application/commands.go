package application

// VerifyOrderCommand requests a non-mutating quote for a bulk order.
// Field-level range checks are left to the domain so rejections surface
// as verification reasons rather than transport errors.
type VerifyOrderCommand struct {
	Quantity             int64   `json:"quantity"`
	DestinationLatitude  float64 `json:"destinationLatitude"`
	DestinationLongitude float64 `json:"destinationLongitude"`
}

// SubmitOrderCommand places a bulk order
type SubmitOrderCommand struct {
	Quantity             int64   `json:"quantity"`
	DestinationLatitude  float64 `json:"destinationLatitude"`
	DestinationLongitude float64 `json:"destinationLongitude"`
}

// CreateWarehouseCommand registers a new warehouse
type CreateWarehouseCommand struct {
	Name      string  `json:"name" binding:"required"`
	Latitude  float64 `json:"latitude" binding:"latitude"`
	Longitude float64 `json:"longitude" binding:"longitude"`
	Stock     int64   `json:"stock" binding:"min=0"`
}

// SetStockCommand replaces a warehouse's stock level
type SetStockCommand struct {
	Stock int64 `json:"stock" binding:"min=0"`
}
