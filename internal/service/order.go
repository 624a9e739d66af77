package service

import (
	"context"
	"time"

	"bakery-service/internal/fulfillment"
	"bakery-service/internal/models"

	"github.com/google/uuid"
)

type OrderLineRequest struct {
	CakeName  string
	Weight    int32
	Quantity  int32
	FactoryID *uuid.UUID
}

type PlaceOrderInput struct {
	Lines []OrderLineRequest
	// IdempotencyKey — необязательный ключ клиента для защиты от повторной отправки
	IdempotencyKey string
}

// LineResult — либо созданная позиция, либо ошибка по ней (Error != "")
type LineResult struct {
	LineID      *uuid.UUID
	Cake        string
	Weight      int32
	PriceCents  int64
	Quantity    int32
	State       models.OrderState
	FactoryID   *uuid.UUID
	FactoryName string
	Error       string
}

func (r LineResult) Failed() bool { return r.Error != "" }

type PlaceOrderResult struct {
	MainOrderID uuid.UUID
	CreatedAt   time.Time
	Lines       []LineResult
}

type MainOrderStatus string

const (
	MainOrderEmpty      MainOrderStatus = "EMPTY"
	MainOrderPlaced     MainOrderStatus = "PLACED"
	MainOrderInProgress MainOrderStatus = "IN_PROGRESS"
	MainOrderCompleted  MainOrderStatus = "COMPLETED"
)

// DeriveMainOrderStatus считает статус заголовка по состояниям его позиций
func DeriveMainOrderStatus(lines []models.OrderLine) MainOrderStatus {
	if len(lines) == 0 {
		return MainOrderEmpty
	}
	allPlaced, allTerminal := true, true
	for i := range lines {
		if lines[i].State != models.StatePlaced {
			allPlaced = false
		}
		if !fulfillment.IsTerminal(lines[i].State) {
			allTerminal = false
		}
	}
	switch {
	case allTerminal:
		return MainOrderCompleted
	case allPlaced:
		return MainOrderPlaced
	default:
		return MainOrderInProgress
	}
}

type MainOrderView struct {
	models.MainOrder
	Status MainOrderStatus
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type ListFilter struct {
	// PlacedBy учитывается только для MAIN_STORE; STORE всегда видит свои заказы
	PlacedBy *uuid.UUID
	Limit    int
	Offset   int
}

// Normalize приводит limit к (0, MaxListLimit], offset — к неотрицательному
func (f ListFilter) Normalize() ListFilter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

type OrderService interface {
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*MainOrderView, error)
	ListOrders(ctx context.Context, f ListFilter) ([]MainOrderView, int64, error)
}
