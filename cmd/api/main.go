package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deviceorder/fulfillment-service/internal/api/handlers"
	"github.com/deviceorder/fulfillment-service/internal/application"
	"github.com/deviceorder/fulfillment-service/internal/domain"
	"github.com/deviceorder/fulfillment-service/internal/infrastructure/events"
	mongoRepo "github.com/deviceorder/fulfillment-service/internal/infrastructure/mongodb"
	"github.com/deviceorder/fulfillment-service/internal/infrastructure/pricing"
	"github.com/deviceorder/fulfillment-service/pkg/kafka"
	"github.com/deviceorder/fulfillment-service/pkg/logging"
	"github.com/deviceorder/fulfillment-service/pkg/metrics"
	"github.com/deviceorder/fulfillment-service/pkg/middleware"
	"github.com/deviceorder/fulfillment-service/pkg/mongodb"
	"github.com/deviceorder/fulfillment-service/pkg/resilience"
	"github.com/deviceorder/fulfillment-service/pkg/tracing"
)

const serviceName = "fulfillment-service"

type mongoClient interface {
	Database() *mongo.Database
	WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) error) error
	Close(context.Context) error
	HealthCheck(context.Context) error
}

type eventPublisher interface {
	application.EventPublisher
	Close() error
}

var newMongoClient = func(ctx context.Context, cfg *mongodb.Config) (mongoClient, error) {
	return mongodb.NewClient(ctx, cfg)
}

var newEventPublisher = func(cfg *kafka.Config, m *metrics.Metrics, logger *logging.Logger) eventPublisher {
	return events.NewKafkaPublisher(kafka.NewProducer(cfg), m, logger)
}

var newWarehouseRepository = func(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) domain.WarehouseRepository {
	return mongoRepo.NewWarehouseRepository(db, m, logger)
}

var newOrderRepository = func(db *mongo.Database, m *metrics.Metrics, logger *logging.Logger) domain.OrderRepository {
	return mongoRepo.NewOrderRepository(db, m, logger)
}

var newTransactionRunner = func(client mongoRepo.SessionClient) domain.TransactionRunner {
	return mongoRepo.NewTransactionRunner(client)
}

var (
	newMetrics      = metrics.New
	initTracing     = tracing.Initialize
	startHTTPServer = func(srv *http.Server) error {
		return srv.ListenAndServe()
	}
)

func main() {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	if err := run(context.Background(), signalCh); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, signalCh <-chan os.Signal) error {
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting fulfillment-service API")

	config := loadConfig()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := initTracing(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := newMetrics(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB. The connect is retried with backoff so a
	// service starting alongside the database survives the first
	// refused connections.
	config.MongoDB.PoolCallback = m.SetMongoDBConnections

	connectRetry := resilience.DefaultRetryConfig()
	connectRetry.RetryableErrors = func(error) bool { return true }

	mongoDB, err := resilience.RetryWithResult(ctx, connectRetry, func() (mongoClient, error) {
		return newMongoClient(ctx, config.MongoDB)
	})
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		return err
	}
	defer mongoDB.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize pricing provider
	pricingProvider, err := newPricingProvider(ctx, config, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to load pricing configuration")
		return err
	}

	// Initialize event publisher (optional)
	var publisher application.EventPublisher
	if config.KafkaEnabled {
		kafkaPublisher := newEventPublisher(config.Kafka, m, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)
	}

	// Initialize repositories
	warehouseRepo := newWarehouseRepository(mongoDB.Database(), m, logger)
	orderRepo := newOrderRepository(mongoDB.Database(), m, logger)
	txRunner := newTransactionRunner(mongoDB)

	// Initialize application services
	orderService := application.NewOrderService(
		warehouseRepo,
		orderRepo,
		txRunner,
		pricingProvider,
		publisher,
		logger,
	)
	warehouseService := application.NewWarehouseService(warehouseRepo, logger)

	// Initialize handlers
	orderMetrics := middleware.NewOrderMetrics(m)
	orderHandler := handlers.NewOrderHandler(orderService, orderMetrics, logger)
	warehouseHandler := handlers.NewWarehouseHandler(warehouseService, logger)

	// Setup Gin router with middleware
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoDB.HealthCheck(ctx)
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.POST("/verify", orderHandler.VerifyOrder)
			orders.POST("", orderHandler.SubmitOrder)
			orders.GET("/:orderId", orderHandler.GetOrder)
		}

		warehouses := v1.Group("/warehouses")
		{
			warehouses.POST("", warehouseHandler.CreateWarehouse)
			warehouses.GET("", warehouseHandler.ListWarehouses)
			warehouses.PUT("/:warehouseId/stock", warehouseHandler.SetStock)
		}
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := startHTTPServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	<-signalCh
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
	return nil
}

// newPricingProvider builds the pricing provider from config: a YAML file
// with hot reload when PRICING_CONFIG_PATH is set, env-derived defaults
// otherwise.
func newPricingProvider(ctx context.Context, config *Config, logger *logging.Logger) (application.PricingProvider, error) {
	if config.PricingConfigPath != "" {
		provider, err := pricing.NewFileProvider(config.PricingConfigPath, logger)
		if err != nil {
			return nil, err
		}
		go provider.Watch(ctx, config.PricingReloadEvery)
		return provider, nil
	}

	return pricing.NewStaticProvider(domain.PricingConfig{
		UnitPrice:            getEnvFloat("PRICING_UNIT_PRICE", 150),
		DeviceWeightKg:       getEnvFloat("PRICING_DEVICE_WEIGHT_KG", 0.365),
		ShippingRatePerKgKm:  getEnvFloat("PRICING_SHIPPING_RATE", 0.01),
		ShippingCostCapRatio: getEnvFloat("PRICING_SHIPPING_CAP_RATIO", 0.15),
		DiscountTiers: []domain.DiscountTier{
			{MinQuantity: 25, Rate: 0.05},
			{MinQuantity: 50, Rate: 0.10},
			{MinQuantity: 100, Rate: 0.15},
			{MinQuantity: 250, Rate: 0.20},
		},
	})
}

// Config holds application configuration
type Config struct {
	ServerAddr         string
	MongoDB            *mongodb.Config
	Kafka              *kafka.Config
	KafkaEnabled       bool
	PricingConfigPath  string
	PricingReloadEvery time.Duration
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "fulfillment_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
		KafkaEnabled:       getEnv("KAFKA_ENABLED", "true") == "true",
		PricingConfigPath:  getEnv("PRICING_CONFIG_PATH", ""),
		PricingReloadEvery: getEnvDuration("PRICING_RELOAD_INTERVAL", 30*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
