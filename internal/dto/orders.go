package dto

import (
	"time"

	"github.com/google/uuid"
)

type OrderLineRequest struct {
	CakeName  string     `json:"cake_name"`
	Weight    int32      `json:"weight"`
	Quantity  int32      `json:"quantity"`
	FactoryID *uuid.UUID `json:"factory_id"`
}

type PlaceOrderRequest struct {
	Lines []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// LineResult — либо созданная позиция, либо Error
type LineResult struct {
	LineID      *uuid.UUID `json:"line_id,omitempty"`
	Cake        string     `json:"cake"`
	Weight      int32      `json:"weight"`
	PriceCents  int64      `json:"price_cents,omitempty"`
	Quantity    int32      `json:"quantity"`
	State       string     `json:"state,omitempty"`
	FactoryID   *uuid.UUID `json:"factory_id,omitempty"`
	FactoryName string     `json:"factory_name,omitempty"`
	Error       string     `json:"error,omitempty"`
}

type PlaceOrderResponse struct {
	MainOrderID uuid.UUID    `json:"main_order_id"`
	CreatedAt   time.Time    `json:"created_at"`
	Lines       []LineResult `json:"lines"`
}

type OrderLine struct {
	ID          uuid.UUID  `json:"id"`
	MainOrderID uuid.UUID  `json:"main_order_id"`
	CakeName    string     `json:"cake_name"`
	Weight      int32      `json:"weight"`
	PriceCents  int64      `json:"price_cents"`
	Quantity    int32      `json:"quantity"`
	TotalCents  int64      `json:"total_cents"`
	State       string     `json:"state"`
	FactoryID   *uuid.UUID `json:"factory_id,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type MainOrder struct {
	ID        uuid.UUID   `json:"id"`
	PlacedBy  uuid.UUID   `json:"placed_by"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	Lines     []OrderLine `json:"lines"`
}

type ListOrdersResponse struct {
	Items  []MainOrder `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

type QuantityRequest struct {
	Quantity int32 `json:"quantity" binding:"required"`
}

type TransitionResponse struct {
	ID          uuid.UUID  `json:"id"`
	MainOrderID *uuid.UUID `json:"main_order_id,omitempty"`
	State       string     `json:"state"`
	Quantity    int32      `json:"quantity"`
}

type QuantityResponse struct {
	ID          uuid.UUID `json:"id"`
	MainOrderID uuid.UUID `json:"main_order_id"`
	CakeName    string    `json:"cake_name"`
	Quantity    int32     `json:"quantity"`
}

type BatchResponse struct {
	MainOrderID uuid.UUID   `json:"main_order_id"`
	LineIDs     []uuid.UUID `json:"line_ids"`
	State       string      `json:"state"`
}
