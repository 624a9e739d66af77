package handlers

import (
	"errors"
	"net/http"

	"bakery-service/internal/dto"
	"bakery-service/internal/media"
	"bakery-service/internal/middleware"
	"bakery-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError переводит ошибку сервисного слоя в HTTP-ответ
func respondError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError(err.Error()))
	case errors.Is(err, service.ErrForbidden):
		log.Warn("Forbidden", zap.String("path", c.FullPath()), zap.String("user_id", c.GetString(middleware.CtxUserID)))
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("operation is not allowed for this user"))
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, media.ErrUnsupportedKind),
		errors.Is(err, media.ErrTooLarge):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), []dto.FieldError{}))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, dto.NewInvalidTransitionError(err.Error()))
	case errors.Is(err, service.ErrConcurrentUpdate),
		errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrCakeExists):
		c.JSON(http.StatusConflict, dto.NewConflictError(err.Error()))
	default:
		log.Error("Internal error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}

func badRequest(c *gin.Context, log *zap.Logger, msg string, err error) {
	log.Warn("Invalid request", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusBadRequest, dto.NewValidationError(msg, []dto.FieldError{}))
}
