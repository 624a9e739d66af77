package service

import (
	"context"

	"bakery-service/internal/models"

	"github.com/google/uuid"
)

type ctxKey string

const ctxActorKey ctxKey = "actor"

// Actor — уже аутентифицированный участник, которого кладёт в контекст транспортный слой
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxActorKey, a)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	v, ok := ctx.Value(ctxActorKey).(Actor)
	return v, ok
}

func requireActor(ctx context.Context) (Actor, error) {
	a, ok := ActorFromContext(ctx)
	if !ok || a.ID == uuid.Nil || !a.Role.Valid() {
		return Actor{}, ErrUnauthorized
	}
	return a, nil
}
