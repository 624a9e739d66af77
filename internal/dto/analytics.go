package dto

import "github.com/google/uuid"

type PeriodStats struct {
	OrdersReceived    int64 `json:"orders_received"`
	TotalEarningCents int64 `json:"total_earning_cents"`
}

type StoreReceipts struct {
	StoreID   uuid.UUID              `json:"store_id"`
	StoreName string                 `json:"store_name"`
	Periods   map[string]PeriodStats `json:"periods"`
}
