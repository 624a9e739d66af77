package models

import (
	"time"

	"github.com/google/uuid"
)

// Роль участника — закрытое перечисление, как OrderStatus у заказов
type Role string

const (
	RoleMainStore Role = "MAIN_STORE"
	RoleStore     Role = "STORE"
	RoleFactory   Role = "FACTORY"
)

func (r Role) Valid() bool {
	switch r {
	case RoleMainStore, RoleStore, RoleFactory:
		return true
	}
	return false
}

// IsStore — роли, которые размещают заказы и получают торты
func (r Role) IsStore() bool {
	switch r {
	case RoleMainStore, RoleStore:
		return true
	case RoleFactory:
		return false
	}
	return false
}

var StoreRoles = []Role{RoleMainStore, RoleStore}

type OrderState string

const (
	StatePlaced                OrderState = "PLACED"
	StateAccepted              OrderState = "ACCEPTED"
	StateRejected              OrderState = "REJECTED"
	StateShipped               OrderState = "SHIPPED"
	StateReceived              OrderState = "RECEIVED"
	StateReceivedWithCondition OrderState = "RECEIVED_WITH_CONDITION"
)

var AllStates = []OrderState{
	StatePlaced, StateAccepted, StateRejected, StateShipped, StateReceived, StateReceivedWithCondition,
}

// ReceivedStates — состояния, которые учитываются в аналитике получения
var ReceivedStates = []OrderState{StateReceived, StateReceivedWithCondition}

func (s OrderState) Valid() bool {
	for _, st := range AllStates {
		if st == s {
			return true
		}
	}
	return false
}

// Actor — магазин, главный магазин или фабрика. Создаётся внешним сервисом пользователей.
type Actor struct {
	ID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name    string    `gorm:"type:varchar(100);not null"`
	Role    Role      `gorm:"type:text;not null;index"`
	Phone   string    `gorm:"type:varchar(64)"`
	Email   string    `gorm:"type:varchar(255)"`
	Address string    `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Actor) TableName() string { return "actors" }

// Cake — позиция прайс-листа, ключ (name, weight)
type Cake struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string    `gorm:"type:varchar(100);not null"`
	Weight     int32     `gorm:"not null"`
	PriceCents int64     `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Cake) TableName() string { return "cakes" }

// MainOrder — заголовок заказа. Статус не хранится: он выводится из позиций при чтении.
type MainOrder struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PlacedBy  uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"not null;default:now();index"`

	Lines []OrderLine `gorm:"foreignKey:MainOrderID;constraint:OnDelete:CASCADE"`
}

func (MainOrder) TableName() string { return "main_orders" }

type OrderLine struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	MainOrderID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	PlacedBy        uuid.UUID  `gorm:"type:uuid;not null;index"`
	AssignedFactory *uuid.UUID `gorm:"type:uuid;index"`
	CakeName        string     `gorm:"type:varchar(100);not null"`
	Weight          int32      `gorm:"not null"`
	PriceCents      int64      `gorm:"not null"`
	Quantity        int32      `gorm:"not null"`
	State           OrderState `gorm:"type:text;not null;default:'PLACED';index"`
	Version         int64      `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderLine) TableName() string { return "order_lines" }

func (l *OrderLine) TotalCents() int64 { return l.PriceCents * int64(l.Quantity) }

type DesignerOrder struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PlacedBy         uuid.UUID  `gorm:"type:uuid;not null;index"`
	AssignedFactory  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Theme            string     `gorm:"type:varchar(100);not null"`
	MessageOnCake    string     `gorm:"type:varchar(255)"`
	DesignImage      string     `gorm:"type:varchar(255);not null"`
	PrintImage       string     `gorm:"type:varchar(255);not null"`
	AudioInstruction *string    `gorm:"type:varchar(255)"`
	Weight           float64    `gorm:"not null"`
	PriceCents       int64      `gorm:"not null"`
	Quantity         int32      `gorm:"not null;default:1"`
	State            OrderState `gorm:"type:text;not null;default:'PLACED';index"`
	Version          int64      `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (DesignerOrder) TableName() string { return "designer_orders" }
