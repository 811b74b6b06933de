package events

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/deviceorder/fulfillment-service/internal/domain"
	"github.com/deviceorder/fulfillment-service/pkg/kafka"
	"github.com/deviceorder/fulfillment-service/pkg/logging"
	"github.com/deviceorder/fulfillment-service/pkg/metrics"
	"github.com/deviceorder/fulfillment-service/pkg/resilience"
)

// KafkaPublisher publishes domain events to Kafka behind a circuit
// breaker. Publishing is best-effort: the caller decides whether a
// failure is fatal.
type KafkaPublisher struct {
	producer *kafka.Producer
	breaker  *resilience.CircuitBreaker
	metrics  *metrics.Metrics
	logger   *logging.Logger
}

// NewKafkaPublisher creates a new KafkaPublisher
func NewKafkaPublisher(producer *kafka.Producer, m *metrics.Metrics, logger *logging.Logger) *KafkaPublisher {
	breakerConfig := resilience.DefaultCircuitBreakerConfig("kafka-publisher")
	breakerConfig.OnStateChange = func(name string, from, to gobreaker.State) {
		m.SetCircuitBreakerState(name, int(to))
		if to == gobreaker.StateOpen {
			m.RecordCircuitBreakerTrip(name)
		}
	}
	breaker := resilience.NewCircuitBreaker(breakerConfig, logger.Logger)
	m.SetCircuitBreakerState(breakerConfig.Name, int(gobreaker.StateClosed))

	return &KafkaPublisher{
		producer: producer,
		breaker:  breaker,
		metrics:  m,
		logger:   logger.WithComponent("events"),
	}
}

// PublishOrderCreated publishes an order created event
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, event *domain.OrderCreatedEvent) error {
	start := time.Now()

	_, err := p.breaker.Execute(ctx, func() (interface{}, error) {
		return nil, p.producer.Publish(ctx, kafka.Topics.OrderEvents, kafka.Message{
			Key:       event.OrderID,
			EventType: event.EventType(),
			Payload:   event,
			Time:      event.OccurredAt(),
		})
	})

	duration := time.Since(start)
	p.metrics.RecordKafkaPublish(kafka.Topics.OrderEvents, event.EventType(), err == nil, duration)
	p.logger.KafkaPublish(ctx, kafka.Topics.OrderEvents, event.EventType(), err == nil, duration)

	return err
}

// Close closes the underlying producer
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
