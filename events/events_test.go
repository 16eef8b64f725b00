package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junaidrashid-git/marinetex-api/models"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:            7,
		OrderRef:      "MT-1",
		TotalPrice:    decimal.NewFromInt(515),
		Currency:      "TRY",
		Status:        models.OrderStatusReceived,
		PaymentStatus: models.PaymentStatusPending,
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	require.NoError(t, p.Publish(context.Background(), NewOrderEvent(TypeOrderPlaced, sampleOrder())))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "MT-1", string(msg.Key))
	assert.Equal(t, "order.placed", string(msg.Headers[0].Value))

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "MT-1", got["orderRef"])
	assert.Equal(t, "received", got["status"])
	assert.NotContains(t, got, "order")
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}
	err := p.Publish(context.Background(), NewOrderEvent(TypeOrderPlaced, sampleOrder()))
	assert.ErrorContains(t, err, "broker down")
}

func TestMulti_DeliversToAll(t *testing.T) {
	a := &recorder{err: errors.New("a failed")}
	b := &recorder{}

	err := Multi{a, b, Nop{}}.Publish(context.Background(), NewOrderEvent(TypeOrderStatusChanged, sampleOrder()))
	assert.ErrorContains(t, err, "a failed")
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestNewKafkaPublisher_ShortBatchWindow(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "orders.events")
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "orders.events", w.Topic)
	assert.Equal(t, batchTimeout, w.BatchTimeout)
	assert.LessOrEqual(t, w.BatchTimeout, 10*time.Millisecond)
}
