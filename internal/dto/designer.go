package dto

import (
	"time"

	"github.com/google/uuid"
)

// PlaceDesignerForm — поля multipart-формы; файлы design_image, print_image, instruction_audio
type PlaceDesignerForm struct {
	Theme         string  `form:"theme" binding:"required"`
	Weight        float64 `form:"weight" binding:"required"`
	FactoryID     string  `form:"factory_id" binding:"required"`
	Quantity      int32   `form:"quantity" binding:"required"`
	PriceCents    int64   `form:"price_cents" binding:"required"`
	MessageOnCake string  `form:"message_on_cake"`
}

// UpdateDesignerForm: незаданные поля не меняются; файлы design_image, print_image, instruction_audio
type UpdateDesignerForm struct {
	Theme         *string  `form:"theme"`
	Weight        *float64 `form:"weight"`
	Quantity      *int32   `form:"quantity"`
	PriceCents    *int64   `form:"price_cents"`
	MessageOnCake *string  `form:"message_on_cake"`
}

type DesignerOrder struct {
	ID               uuid.UUID `json:"designer_order_id"`
	PlacedBy         uuid.UUID `json:"user_id"`
	FactoryID        uuid.UUID `json:"factory_id"`
	Theme            string    `json:"theme"`
	MessageOnCake    string    `json:"message_on_cake,omitempty"`
	Weight           float64   `json:"weight"`
	PriceCents       int64     `json:"price_cents"`
	Quantity         int32     `json:"quantity"`
	DesignImage      string    `json:"design_image"`
	PrintImage       string    `json:"print_image"`
	AudioInstruction *string   `json:"audio_instruction"`
	State            string    `json:"order_status"`
	CreatedAt        time.Time `json:"created_at"`
}
