package service

import (
	"errors"
	"fmt"

	"bakery-service/internal/fulfillment"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")

	ErrInvalidTransition = fulfillment.ErrInvalidTransition
	ErrConcurrentUpdate  = errors.New("order was modified concurrently")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrCakeExists        = errors.New("cake already exists for this weight")

	ErrLineNotFound          = fmt.Errorf("order line %w", ErrNotFound)
	ErrMainOrderNotFound     = fmt.Errorf("main order %w", ErrNotFound)
	ErrDesignerOrderNotFound = fmt.Errorf("designer order %w", ErrNotFound)
	ErrFactoryNotFound       = fmt.Errorf("factory %w", ErrNotFound)
	ErrStoreNotFound         = fmt.Errorf("store %w", ErrNotFound)
	ErrCakeNotFound          = fmt.Errorf("cake %w for selected weight", ErrNotFound)
	ErrNothingToAccept       = fmt.Errorf("no placed lines for this factory: %w", ErrNotFound)
	ErrNothingToShip         = fmt.Errorf("no accepted lines for this factory: %w", ErrNotFound)
)

// Тексты ошибок по отдельным позициям в ответе PlaceOrder
const (
	lineErrFactoryNotFound = "factory not found"
	lineErrCakeNotFound    = "not found for selected weight"
	lineErrQuantity        = "quantity must be > 0"
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
