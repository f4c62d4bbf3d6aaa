package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Event types
const (
	TypeBookingCreated  = "booking.created"
	TypeBookingImported = "booking.imported"
)

// DefaultTopic is used when no topic is configured
const DefaultTopic = "bus-bookings"

// BookingEvent is the payload written for each saved booking or imported batch
type BookingEvent struct {
	Type         string    `json:"type"`
	TicketNumber string    `json:"ticket_number,omitempty"`
	PaymentID    string    `json:"payment_id,omitempty"`
	Seats        int       `json:"seats,omitempty"`
	Departure    string    `json:"departure,omitempty"`
	Arrival      string    `json:"arrival,omitempty"`
	Email        string    `json:"email,omitempty"`
	Source       string    `json:"source,omitempty"`
	BatchID      string    `json:"batch_id,omitempty"`
	Count        int       `json:"count,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Key returns the partition key for the event
func (e *BookingEvent) Key() string {
	if e.TicketNumber != "" {
		return e.TicketNumber
	}
	return e.BatchID
}

// Publisher emits booking events
type Publisher interface {
	Publish(ctx context.Context, event *BookingEvent) error
	Close() error
}

// messageWriter is the part of kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *logrus.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers
func NewKafkaPublisher(brokers []string, topic string, logger *logrus.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one kafka broker is required")
	}
	if topic == "" {
		topic = DefaultTopic
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return newKafkaPublisher(writer, topic, logger), nil
}

func newKafkaPublisher(writer messageWriter, topic string, logger *logrus.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

// Publish serialises event as JSON and writes it keyed by ticket or batch id
func (p *KafkaPublisher) Publish(ctx context.Context, event *BookingEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Key()),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"topic": p.topic,
		"type":  event.Type,
		"key":   event.Key(),
	}).Debug("Published booking event")

	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// NoopPublisher discards events
type NoopPublisher struct{}

// Publish does nothing
func (NoopPublisher) Publish(context.Context, *BookingEvent) error { return nil }

// Close does nothing
func (NoopPublisher) Close() error { return nil }
