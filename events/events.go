// Package events publishes order lifecycle events to interested sinks:
// the admin websocket feed and, when configured, a kafka topic.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/junaidrashid-git/marinetex-api/models"
)

const (
	TypeOrderPlaced          = "order.placed"
	TypeOrderStatusChanged   = "order.status_changed"
	TypePaymentStatusChanged = "order.payment_status_changed"
	TypeOrderDeleted         = "order.deleted"
)

type Event struct {
	Type          string               `json:"type"`
	OrderID       uint                 `json:"orderId"`
	OrderRef      string               `json:"orderRef"`
	Status        models.OrderStatus   `json:"status,omitempty"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus,omitempty"`
	TotalPrice    decimal.Decimal      `json:"totalPrice"`
	Currency      string               `json:"currency"`
	OccurredAt    time.Time            `json:"occurredAt"`
	Order         *models.Order        `json:"order,omitempty"`
}

// NewOrderEvent snapshots the order into an event of the given type.
func NewOrderEvent(eventType string, order *models.Order) Event {
	return Event{
		Type:          eventType,
		OrderID:       order.ID,
		OrderRef:      order.OrderRef,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalPrice:    order.TotalPrice,
		Currency:      order.Currency,
		OccurredAt:    time.Now().UTC(),
		Order:         order,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi delivers an event to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by order ref, so one order's events
// stay on one partition.
type KafkaPublisher struct {
	writer messageWriter
}

// Publish is called inline by request handlers, so a write must not wait
// for the writer's default one second batch window.
const batchTimeout = 10 * time.Millisecond

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           batchTimeout,
		WriteTimeout:           5 * time.Second,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	// Full order bodies stay off the topic.
	event.Order = nil
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(event.OrderRef),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s failed: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
