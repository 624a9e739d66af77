package dto

import "github.com/google/uuid"

type Cake struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Weight     int32     `json:"weight"`
	PriceCents int64     `json:"price_cents"`
}

type QuoteRequest struct {
	CakeName string `json:"cake_name" binding:"required"`
	Weight   int32  `json:"weight" binding:"required"`
}

type AddCakeRequest struct {
	Name       string `json:"name" binding:"required"`
	Weight     int32  `json:"weight" binding:"required"`
	PriceCents int64  `json:"price_cents" binding:"required"`
}

type UpdatePriceRequest struct {
	PriceCents int64 `json:"price_cents" binding:"required"`
}

type BulkImportResponse struct {
	Message string   `json:"message"`
	Cakes   []string `json:"cakes"`
	Skipped int      `json:"skipped"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
