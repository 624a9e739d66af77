package producer

import (
	"context"
	"encoding/json"
	"time"

	"bakery-service/internal/service"

	"github.com/segmentio/kafka-go"
)

// messageWriter — часть kafka.Writer, которой пользуется продюсер
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventProducer публикует события в один топик. Ключ сообщения — id позиции
// (или заказа для order.placed), поэтому события одной позиции идут в одну партицию по порядку.
type EventProducer struct {
	writer messageWriter
}

func NewEventProducer(brokers []string, topic string) *EventProducer {
	return &EventProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

const (
	TypeOrderPlaced = "order.placed"
	TypeFulfillment = "order.fulfillment"
)

func (p *EventProducer) PublishOrderPlaced(ctx context.Context, e service.OrderPlacedEvent) error {
	return p.send(ctx, e.MainOrderID.String(), envelope{Type: TypeOrderPlaced, Payload: e})
}

func (p *EventProducer) PublishFulfillment(ctx context.Context, e service.FulfillmentEvent) error {
	return p.send(ctx, e.ItemID.String(), envelope{Type: TypeFulfillment, Payload: e})
}

func (p *EventProducer) send(ctx context.Context, key string, msg envelope) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(msg.Type)},
		},
	})
}

func (p *EventProducer) Close() error {
	return p.writer.Close()
}
