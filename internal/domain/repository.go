package domain

import "context"

// WarehouseRepository defines the interface for warehouse persistence
type WarehouseRepository interface {
	// Save persists a warehouse
	Save(ctx context.Context, warehouse *Warehouse) error

	// ListAll retrieves the full warehouse snapshot in creation order
	ListAll(ctx context.Context) ([]*Warehouse, error)

	// FindByID retrieves a warehouse by its warehouse ID
	FindByID(ctx context.Context, warehouseID string) (*Warehouse, error)

	// FindByName retrieves a warehouse by its unique display name
	FindByName(ctx context.Context, name string) (*Warehouse, error)

	// DecrementStock atomically decrements stock by quantity, guarded by
	// stock >= quantity. Returns ErrStockConflict when the guard fails.
	// Must be invoked within an externally managed transaction scope.
	DecrementStock(ctx context.Context, warehouseID string, quantity int64) error

	// SetStock replaces a warehouse's stock level
	SetStock(ctx context.Context, warehouseID string, stock int64) error
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Save persists a new order, invoked within the submission transaction
	Save(ctx context.Context, order *Order) error

	// FindByID retrieves an order by its order ID
	FindByID(ctx context.Context, orderID string) (*Order, error)
}

// TransactionRunner provides atomic commit/rollback semantics around a
// callback. Repository calls made with the callback's context join the
// transaction; any error aborts and rolls back every write.
type TransactionRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}
