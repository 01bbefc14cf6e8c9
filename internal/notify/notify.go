package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"signalcraft-be/internal/logger"
	"signalcraft-be/internal/metrics"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Kind string

const (
	KindOrderCreated   Kind = "order.created"
	KindStatusChanged  Kind = "order.status_changed"
	KindShippingChange Kind = "order.shipping_updated"
	KindPaymentChanged Kind = "order.payment_updated"
)

// OrderNotification is the message body written for downstream consumers
// (fulfilment, mailers). It mirrors the public order vocabulary.
type OrderNotification struct {
	OrderID       string    `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	Kind          Kind      `json:"kind"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, n OrderNotification) error
}

// Producer is the subset of *kafka.Writer used here.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

const (
	DefaultBuffer       = 256
	DefaultWriteTimeout = 10 * time.Second
)

var ErrQueueFull = errors.New("notification queue full")

// KafkaPublisher queues notifications in memory and writes them from Run, so
// Publish never waits on the broker. When the queue is full the
// notification is dropped.
type KafkaPublisher struct {
	producer     Producer
	topic        string
	queue        chan kafka.Message
	writeTimeout time.Duration

	sent    metrics.Counter
	failed  metrics.Counter
	dropped metrics.Counter
}

func NewKafkaPublisher(producer Producer, topic string, buffer int) *KafkaPublisher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &KafkaPublisher{
		producer:     producer,
		topic:        topic,
		queue:        make(chan kafka.Message, buffer),
		writeTimeout: DefaultWriteTimeout,
	}
}

func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: DefaultWriteTimeout,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, n OrderNotification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(n.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(n.Kind)},
		},
	}
	if id := logger.RequestIDFrom(ctx); id != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: "request_id", Value: []byte(id)})
	}

	select {
	case p.queue <- msg:
		return nil
	default:
		p.dropped.Inc()
		return ErrQueueFull
	}
}

// Run writes queued notifications until ctx is done, then flushes whatever
// is still queued before returning.
func (p *KafkaPublisher) Run(ctx context.Context) {
	for {
		select {
		case msg := <-p.queue:
			p.write(msg)
		case <-ctx.Done():
			for {
				select {
				case msg := <-p.queue:
					p.write(msg)
				default:
					return
				}
			}
		}
	}
}

func (p *KafkaPublisher) write(msg kafka.Message) {
	log := logger.L().With(
		zap.String("layer", "notify"),
		zap.String("order_id", string(msg.Key)),
		zap.String("kind", headerValue(msg, "event_type")),
	)
	if id := headerValue(msg, "request_id"); id != "" {
		log = log.With(zap.String("request_id", id))
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
	defer cancel()

	timer := metrics.StartTimer()
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		p.failed.Inc()
		log.Error("publish order notification failed",
			zap.Duration("elapsed", timer.Elapsed()),
			zap.Uint64("failed_total", p.failed.Load()),
			zap.Error(err),
		)
		return
	}

	p.sent.Inc()
	log.Debug("order notification published", zap.Duration("elapsed", timer.Elapsed()))
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Dropped reports notifications discarded because the queue was full.
func (p *KafkaPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Stats reports delivered and failed publishes since start.
func (p *KafkaPublisher) Stats() (sent, failed uint64) {
	return p.sent.Load(), p.failed.Load()
}

// NopPublisher drops notifications; used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderNotification) error { return nil }
