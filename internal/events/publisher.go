// Package events publishes order lifecycle events to Kafka. Publishing is
// best-effort and entirely optional: with no brokers configured the
// publisher is disabled and every publish is a no-op.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/tanush1852/FreshMart/internal/marketplace/domain"
)

const orderCreatedTopic = "freshmart.orders.created"

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher parses a comma-separated broker list. An empty list yields a
// disabled publisher.
func NewPublisher(brokersCSV string) *Publisher {
	var brokers []string
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return &Publisher{}
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        orderCreatedTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// OrderCreated publishes the event keyed by order ID so all events for one
// order land on the same partition.
func (p *Publisher) OrderCreated(ctx context.Context, order *domain.Order) error {
	if !p.Enabled() {
		return nil
	}

	event := OrderCreated{
		EventID:    uuid.NewString(),
		OrderID:    order.ID,
		CustomerID: order.Customer,
		Total:      order.Total,
		CreatedAt:  order.CreatedAt,
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(order.ID),
		Value: data,
		Time:  time.Now().UTC(),
	})
}
