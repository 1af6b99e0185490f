// Package events publishes order lifecycle events to Kafka when a broker
// is configured. Publishing is best effort: the order flow never fails
// because a broker is down.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	TopicOrders = "pos.orders"

	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

type Event struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	OrderID   int       `json:"order_id"`
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Total     int       `json:"total,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher builds a publisher for the comma separated broker list.
// An empty list yields a disabled publisher whose Publish is a no-op.
func NewPublisher(brokersCSV string) *Publisher {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &Publisher{}
	}
	return &Publisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        TopicOrders,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.writer != nil
}

// Publish writes the event keyed by order id so all events for one order
// land on the same partition in order.
func (p *Publisher) Publish(ctx context.Context, evt Event) error {
	if !p.Enabled() {
		return nil
	}
	if evt.EventID == "" {
		evt.EventID = uuid.NewString()
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	key := []byte("order-" + strconv.Itoa(evt.OrderID))
	return p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: data, Time: evt.CreatedAt})
}

func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}
	return p.writer.Close()
}
