package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deviceorder/fulfillment-service/internal/domain"
	mongoRepo "github.com/deviceorder/fulfillment-service/internal/infrastructure/mongodb"
	"github.com/deviceorder/fulfillment-service/pkg/kafka"
	"github.com/deviceorder/fulfillment-service/pkg/logging"
	"github.com/deviceorder/fulfillment-service/pkg/metrics"
	"github.com/deviceorder/fulfillment-service/pkg/mongodb"
	"github.com/deviceorder/fulfillment-service/pkg/tracing"
)

type fakeMongo struct{}

func (f *fakeMongo) Database() *mongo.Database         { return nil }
func (f *fakeMongo) Close(context.Context) error       { return nil }
func (f *fakeMongo) HealthCheck(context.Context) error { return nil }

func (f *fakeMongo) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type fakePublisher struct {
	closed *bool
}

func (f *fakePublisher) PublishOrderCreated(context.Context, *domain.OrderCreatedEvent) error {
	return nil
}

func (f *fakePublisher) Close() error {
	if f.closed != nil {
		*f.closed = true
	}
	return nil
}

type fakeWarehouseRepo struct{}

func (f *fakeWarehouseRepo) Save(context.Context, *domain.Warehouse) error { return nil }
func (f *fakeWarehouseRepo) ListAll(context.Context) ([]*domain.Warehouse, error) {
	return nil, nil
}
func (f *fakeWarehouseRepo) FindByID(context.Context, string) (*domain.Warehouse, error) {
	return nil, nil
}
func (f *fakeWarehouseRepo) FindByName(context.Context, string) (*domain.Warehouse, error) {
	return nil, nil
}
func (f *fakeWarehouseRepo) DecrementStock(context.Context, string, int64) error { return nil }
func (f *fakeWarehouseRepo) SetStock(context.Context, string, int64) error       { return nil }

type fakeOrderRepo struct{}

func (f *fakeOrderRepo) Save(context.Context, *domain.Order) error { return nil }
func (f *fakeOrderRepo) FindByID(context.Context, string) (*domain.Order, error) {
	return nil, nil
}

type fakeTxRunner struct{}

func (f *fakeTxRunner) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func stubDependencies(t *testing.T) {
	t.Helper()

	oldMongo := newMongoClient
	oldPublisher := newEventPublisher
	oldWarehouseRepo := newWarehouseRepository
	oldOrderRepo := newOrderRepository
	oldTxRunner := newTransactionRunner
	oldInitTracing := initTracing
	oldStartHTTP := startHTTPServer

	t.Cleanup(func() {
		newMongoClient = oldMongo
		newEventPublisher = oldPublisher
		newWarehouseRepository = oldWarehouseRepo
		newOrderRepository = oldOrderRepo
		newTransactionRunner = oldTxRunner
		initTracing = oldInitTracing
		startHTTPServer = oldStartHTTP
	})

	newMongoClient = func(context.Context, *mongodb.Config) (mongoClient, error) {
		return &fakeMongo{}, nil
	}
	newEventPublisher = func(*kafka.Config, *metrics.Metrics, *logging.Logger) eventPublisher {
		return &fakePublisher{}
	}
	newWarehouseRepository = func(*mongo.Database, *metrics.Metrics, *logging.Logger) domain.WarehouseRepository {
		return &fakeWarehouseRepo{}
	}
	newOrderRepository = func(*mongo.Database, *metrics.Metrics, *logging.Logger) domain.OrderRepository {
		return &fakeOrderRepo{}
	}
	newTransactionRunner = func(mongoRepo.SessionClient) domain.TransactionRunner {
		return &fakeTxRunner{}
	}
	initTracing = func(context.Context, *tracing.Config) (*tracing.TracerProvider, error) {
		return &tracing.TracerProvider{}, nil
	}
	startHTTPServer = func(*http.Server) error { return http.ErrServerClosed }
}

func TestRunSuccess(t *testing.T) {
	stubDependencies(t)

	closed := false
	newEventPublisher = func(*kafka.Config, *metrics.Metrics, *logging.Logger) eventPublisher {
		return &fakePublisher{closed: &closed}
	}

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	err := run(context.Background(), signalCh)
	require.NoError(t, err)
	assert.True(t, closed)
}

func TestRunTracingErrorIsNonFatal(t *testing.T) {
	stubDependencies(t)

	initTracing = func(context.Context, *tracing.Config) (*tracing.TracerProvider, error) {
		return nil, errors.New("trace init failed")
	}

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	err := run(context.Background(), signalCh)
	require.NoError(t, err)
}

func TestRunMongoError(t *testing.T) {
	stubDependencies(t)

	newMongoClient = func(context.Context, *mongodb.Config) (mongoClient, error) {
		return nil, errors.New("mongo error")
	}

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	err := run(context.Background(), signalCh)
	assert.Error(t, err)
}

func TestRunMongoConnectRetried(t *testing.T) {
	stubDependencies(t)

	attempts := 0
	newMongoClient = func(context.Context, *mongodb.Config) (mongoClient, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return &fakeMongo{}, nil
	}

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	err := run(context.Background(), signalCh)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRunKafkaDisabled(t *testing.T) {
	stubDependencies(t)
	t.Setenv("KAFKA_ENABLED", "false")

	publisherBuilt := false
	newEventPublisher = func(*kafka.Config, *metrics.Metrics, *logging.Logger) eventPublisher {
		publisherBuilt = true
		return &fakePublisher{}
	}

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	err := run(context.Background(), signalCh)
	require.NoError(t, err)
	assert.False(t, publisherBuilt)
}

func TestRunInvalidPricingConfig(t *testing.T) {
	stubDependencies(t)
	t.Setenv("PRICING_UNIT_PRICE", "-1")

	signalCh := make(chan os.Signal, 1)
	signalCh <- os.Interrupt

	err := run(context.Background(), signalCh)
	assert.Error(t, err)
}

func TestRunServerErrorLogged(t *testing.T) {
	stubDependencies(t)

	serverCalled := make(chan struct{})
	// A goroutine leaked by a previous test's run can still call this stub;
	// guard the close so the signal stays idempotent.
	var serverCalledOnce sync.Once
	startHTTPServer = func(*http.Server) error {
		serverCalledOnce.Do(func() { close(serverCalled) })
		return errors.New("server failed")
	}

	signalCh := make(chan os.Signal, 1)
	go func() {
		<-serverCalled
		signalCh <- os.Interrupt
	}()

	err := run(context.Background(), signalCh)
	assert.NoError(t, err)
}
