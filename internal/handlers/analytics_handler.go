package handlers

import (
	"net/http"

	"bakery-service/internal/dto"
	"bakery-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	analytics service.AnalyticsService
	log       *zap.Logger
}

func NewAnalyticsHandler(analytics service.AnalyticsService, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, log: log}
}

// StoreReceipts: ?store_id= необязателен
func (h *AnalyticsHandler) StoreReceipts(c *gin.Context) {
	var target *uuid.UUID
	if s := c.Query("store_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			badRequest(c, h.log, "invalid store_id", err)
			return
		}
		target = &id
	}

	res, err := h.analytics.StoreReceipts(c.Request.Context(), target)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	out := make([]dto.StoreReceipts, len(res))
	for i, r := range res {
		periods := make(map[string]dto.PeriodStats, len(r.Periods))
		for label, p := range r.Periods {
			periods[label] = dto.PeriodStats{OrdersReceived: p.OrdersReceived, TotalEarningCents: p.TotalEarningCents}
		}
		out[i] = dto.StoreReceipts{StoreID: r.StoreID, StoreName: r.StoreName, Periods: periods}
	}
	c.JSON(http.StatusOK, out)
}
