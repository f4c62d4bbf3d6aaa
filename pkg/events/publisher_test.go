package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &recordingWriter{}
	pub := newKafkaPublisher(writer, "bookings", quietLogger())

	at := time.Date(2024, 5, 1, 14, 3, 22, 0, time.UTC)
	err := pub.Publish(context.Background(), &BookingEvent{
		Type:         TypeBookingCreated,
		TicketNumber: "TICKET-482913",
		PaymentID:    "pay_X1",
		Seats:        2,
		OccurredAt:   at,
	})
	require.NoError(t, err)
	require.Len(t, writer.msgs, 1)

	msg := writer.msgs[0]
	assert.Equal(t, "TICKET-482913", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, TypeBookingCreated, string(msg.Headers[0].Value))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "booking.created", decoded["type"])
	assert.Equal(t, "pay_X1", decoded["payment_id"])
	assert.NotContains(t, decoded, "batch_id")
}

func TestKafkaPublisher_BatchKeyAndTimestamp(t *testing.T) {
	writer := &recordingWriter{}
	pub := newKafkaPublisher(writer, "bookings", quietLogger())

	event := &BookingEvent{Type: TypeBookingImported, BatchID: "batch-1", Count: 3}
	require.NoError(t, pub.Publish(context.Background(), event))

	assert.Equal(t, "batch-1", string(writer.msgs[0].Key))
	assert.False(t, event.OccurredAt.IsZero())
}

func TestKafkaPublisher_Errors(t *testing.T) {
	writer := &recordingWriter{err: errors.New("leader not available")}
	pub := newKafkaPublisher(writer, "bookings", quietLogger())

	err := pub.Publish(context.Background(), &BookingEvent{Type: TypeBookingCreated})
	assert.ErrorContains(t, err, "leader not available")

	assert.Error(t, pub.Publish(context.Background(), nil))

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)
}

func TestNewKafkaPublisher(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "", quietLogger())
	assert.Error(t, err)

	pub, err := NewKafkaPublisher([]string{"localhost:9092"}, "", quietLogger())
	require.NoError(t, err)
	assert.Equal(t, DefaultTopic, pub.topic)
	assert.NoError(t, pub.Close())
}

func TestNoopPublisher(t *testing.T) {
	var pub Publisher = NoopPublisher{}
	assert.NoError(t, pub.Publish(context.Background(), &BookingEvent{}))
	assert.NoError(t, pub.Close())
}
