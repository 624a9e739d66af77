package service

import (
	"context"
	"time"

	"bakery-service/internal/fulfillment"
	"bakery-service/internal/models"

	"github.com/google/uuid"
)

type FulfillmentEvent struct {
	Kind        fulfillment.Kind  `json:"kind"`
	ItemID      uuid.UUID         `json:"item_id"`
	MainOrderID *uuid.UUID        `json:"main_order_id,omitempty"`
	PlacedBy    uuid.UUID         `json:"placed_by"`
	Action      string            `json:"action"`
	From        models.OrderState `json:"from"`
	To          models.OrderState `json:"to"`
	Quantity    int32             `json:"quantity"`
	ActorID     uuid.UUID         `json:"actor_id"`
	ActorRole   models.Role       `json:"actor_role"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

type OrderPlacedEvent struct {
	MainOrderID uuid.UUID   `json:"main_order_id"`
	PlacedBy    uuid.UUID   `json:"placed_by"`
	LineIDs     []uuid.UUID `json:"line_ids"`
	CreatedAt   time.Time   `json:"created_at"`
}

type EventBus interface {
	PublishOrderPlaced(ctx context.Context, e OrderPlacedEvent) error
	PublishFulfillment(ctx context.Context, e FulfillmentEvent) error
}

// IdempotencyGuard резервирует ключ запроса; false — ключ уже использован
type IdempotencyGuard interface {
	Reserve(ctx context.Context, key string) (bool, error)
	// Release снимает резерв, если заказ так и не был записан
	Release(ctx context.Context, key string) error
}
