package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deviceorder/fulfillment-service/internal/domain"
	"github.com/deviceorder/fulfillment-service/pkg/logging"
	"github.com/deviceorder/fulfillment-service/pkg/metrics"
)

// observe records one repository operation in metrics and the query log.
// Both sinks are optional: unit tests build repositories without them.
func observe(ctx context.Context, m *metrics.Metrics, logger *logging.Logger, collection, operation string, start time.Time, rows int64, err error) {
	duration := time.Since(start)
	if m != nil {
		m.RecordMongoDBOperation(collection, operation, err == nil, duration)
	}
	if logger != nil {
		logger.DatabaseQuery(ctx, collection, operation, duration, err == nil, rows)
	}
}

// WarehouseRepository implements domain.WarehouseRepository
type WarehouseRepository struct {
	collection *mongo.Collection
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

// NewWarehouseRepository creates a new WarehouseRepository
func NewWarehouseRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *WarehouseRepository {
	collection := db.Collection("warehouses")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "warehouseId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: 1}},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &WarehouseRepository{collection: collection, metrics: m, logger: logger}
}

// Save persists a warehouse
func (r *WarehouseRepository) Save(ctx context.Context, warehouse *domain.Warehouse) error {
	warehouse.UpdatedAt = time.Now().UTC()
	start := time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"warehouseId": warehouse.WarehouseID}
	update := bson.M{"$set": warehouse}

	result, err := r.collection.UpdateOne(ctx, filter, update, opts)
	var rows int64
	if result != nil {
		rows = result.ModifiedCount + result.UpsertedCount
	}
	observe(ctx, r.metrics, r.logger, "warehouses", "save", start, rows, err)
	return err
}

// ListAll retrieves all warehouses in creation order
func (r *WarehouseRepository) ListAll(ctx context.Context) ([]*domain.Warehouse, error) {
	start := time.Now()
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		observe(ctx, r.metrics, r.logger, "warehouses", "listAll", start, 0, err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var warehouses []*domain.Warehouse
	err = cursor.All(ctx, &warehouses)
	observe(ctx, r.metrics, r.logger, "warehouses", "listAll", start, int64(len(warehouses)), err)
	if err != nil {
		return nil, err
	}
	return warehouses, nil
}

// FindByID retrieves a warehouse by its business identifier
func (r *WarehouseRepository) FindByID(ctx context.Context, warehouseID string) (*domain.Warehouse, error) {
	start := time.Now()
	var warehouse domain.Warehouse
	filter := bson.M{"warehouseId": warehouseID}

	err := r.collection.FindOne(ctx, filter).Decode(&warehouse)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			observe(ctx, r.metrics, r.logger, "warehouses", "findByID", start, 0, nil)
			return nil, nil
		}
		observe(ctx, r.metrics, r.logger, "warehouses", "findByID", start, 0, err)
		return nil, err
	}
	observe(ctx, r.metrics, r.logger, "warehouses", "findByID", start, 1, nil)
	return &warehouse, nil
}

// FindByName retrieves a warehouse by name
func (r *WarehouseRepository) FindByName(ctx context.Context, name string) (*domain.Warehouse, error) {
	start := time.Now()
	var warehouse domain.Warehouse
	filter := bson.M{"name": name}

	err := r.collection.FindOne(ctx, filter).Decode(&warehouse)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			observe(ctx, r.metrics, r.logger, "warehouses", "findByName", start, 0, nil)
			return nil, nil
		}
		observe(ctx, r.metrics, r.logger, "warehouses", "findByName", start, 0, err)
		return nil, err
	}
	observe(ctx, r.metrics, r.logger, "warehouses", "findByName", start, 1, nil)
	return &warehouse, nil
}

// DecrementStock atomically subtracts quantity from a warehouse's stock.
// The filter guards against concurrent depletion: if the warehouse no
// longer holds enough stock the update matches nothing and the caller
// gets ErrStockConflict.
func (r *WarehouseRepository) DecrementStock(ctx context.Context, warehouseID string, quantity int64) error {
	start := time.Now()
	filter := bson.M{
		"warehouseId": warehouseID,
		"stock":       bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"stock": -quantity},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err == nil && result.MatchedCount == 0 {
		err = domain.ErrStockConflict
	}
	var rows int64
	if result != nil {
		rows = result.ModifiedCount
	}
	observe(ctx, r.metrics, r.logger, "warehouses", "decrementStock", start, rows, err)
	return err
}

// SetStock replaces a warehouse's stock level
func (r *WarehouseRepository) SetStock(ctx context.Context, warehouseID string, stock int64) error {
	start := time.Now()
	filter := bson.M{"warehouseId": warehouseID}
	update := bson.M{
		"$set": bson.M{
			"stock":     stock,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err == nil && result.MatchedCount == 0 {
		err = errors.New("warehouse not found")
	}
	var rows int64
	if result != nil {
		rows = result.ModifiedCount
	}
	observe(ctx, r.metrics, r.logger, "warehouses", "setStock", start, rows, err)
	return err
}

// OrderRepository implements domain.OrderRepository
type OrderRepository struct {
	collection *mongo.Collection
	metrics    *metrics.Metrics
	logger     *logging.Logger
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) *OrderRepository {
	collection := db.Collection("orders")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "allocations.warehouseId", Value: 1}},
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &OrderRepository{collection: collection, metrics: m, logger: logger}
}

// Save persists an order
func (r *OrderRepository) Save(ctx context.Context, order *domain.Order) error {
	start := time.Now()
	_, err := r.collection.InsertOne(ctx, order)
	var rows int64
	if err == nil {
		rows = 1
	}
	observe(ctx, r.metrics, r.logger, "orders", "save", start, rows, err)
	return err
}

// FindByID retrieves an order by its business identifier
func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	start := time.Now()
	var order domain.Order
	filter := bson.M{"orderId": orderID}

	err := r.collection.FindOne(ctx, filter).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			observe(ctx, r.metrics, r.logger, "orders", "findByID", start, 0, nil)
			return nil, nil
		}
		observe(ctx, r.metrics, r.logger, "orders", "findByID", start, 0, err)
		return nil, err
	}
	observe(ctx, r.metrics, r.logger, "orders", "findByID", start, 1, nil)
	return &order, nil
}
