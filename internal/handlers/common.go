package handlers

import (
	"context"

	"bakery-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type (
	transitionFunc func(ctx context.Context, id uuid.UUID) (*service.TransitionResult, error)
	batchFunc      func(ctx context.Context, id uuid.UUID) (*service.BatchResult, error)
)

func parsePathID(c *gin.Context, log *zap.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, log, "invalid id", err)
		return uuid.Nil, false
	}
	return id, true
}
