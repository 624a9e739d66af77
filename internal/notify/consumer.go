package notify

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"bakery-service/internal/fulfillment"
	"bakery-service/internal/models"
	"bakery-service/internal/producer"
	"bakery-service/internal/service"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const templateStatusChanged = "status_changed"

// subjects — состояния, о которых сообщаем магазину. Приёмку магазин делает сам.
var subjects = map[models.OrderState]string{
	models.StateAccepted: "Your order was accepted by the factory",
	models.StateRejected: "Your order was rejected by the factory",
	models.StateShipped:  "Your order has been shipped",
}

type ActorLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Actor, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type FulfillmentConsumer struct {
	reader messageReader
	actors ActorLookup
	mailer Mailer
	log    *zap.Logger
}

func NewFulfillmentConsumer(brokers []string, groupID, topic string, actors ActorLookup, mailer Mailer, log *zap.Logger) *FulfillmentConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &FulfillmentConsumer{reader: r, actors: actors, mailer: mailer, log: log}
}

func (c *FulfillmentConsumer) Run(ctx context.Context) error {
	c.log.Info("fulfillment consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			continue
		}
		if err := c.Handle(ctx, m); err != nil {
			c.log.Error("handle fulfillment event", zap.ByteString("key", m.Key), zap.Error(err))
		}
	}
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handle: битые и нерелевантные сообщения пропускаются без ошибки, чтобы не блокировать партицию
func (c *FulfillmentConsumer) Handle(ctx context.Context, m kafka.Message) error {
	var env envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		c.log.Warn("unmarshal envelope", zap.ByteString("value", m.Value), zap.Error(err))
		return nil
	}
	if env.Type != producer.TypeFulfillment {
		return nil
	}
	var e service.FulfillmentEvent
	if err := json.Unmarshal(env.Payload, &e); err != nil {
		c.log.Warn("unmarshal fulfillment event", zap.ByteString("value", m.Value), zap.Error(err))
		return nil
	}

	subject, ok := subjects[e.To]
	if !ok || e.PlacedBy == uuid.Nil {
		return nil
	}

	store, err := c.actors.GetByID(ctx, e.PlacedBy)
	if err != nil {
		return err
	}
	if store == nil || store.Email == "" {
		c.log.Debug("store has no email, skip", zap.String("store_id", e.PlacedBy.String()))
		return nil
	}

	n := Notification{
		To:       store.Email,
		Subject:  subject,
		Template: templateStatusChanged,
		Data:     templateData(store, e),
	}
	if err := c.mailer.SendEmail(n); err != nil {
		return err
	}
	c.log.Info("email sent",
		zap.String("to", store.Email),
		zap.String("item_id", e.ItemID.String()),
		zap.String("state", string(e.To)),
	)
	return nil
}

func templateData(store *models.Actor, e service.FulfillmentEvent) map[string]any {
	item := "Order line"
	if e.Kind == fulfillment.KindDesignerOrder {
		item = "Designer order"
	}
	data := map[string]any{
		"StoreName":  store.Name,
		"Item":       item,
		"ItemID":     e.ItemID.String(),
		"State":      string(e.To),
		"Quantity":   e.Quantity,
		"OccurredAt": e.OccurredAt.Format(time.RFC1123),
	}
	if e.MainOrderID != nil {
		data["MainOrderID"] = e.MainOrderID.String()
	}
	return data
}

func (c *FulfillmentConsumer) Close() error { return c.reader.Close() }
