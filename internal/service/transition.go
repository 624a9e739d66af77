package service

import (
	"context"
	"errors"

	"bakery-service/internal/fulfillment"
	"bakery-service/internal/models"
	"bakery-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TransitionResult struct {
	Kind        fulfillment.Kind
	ID          uuid.UUID
	MainOrderID *uuid.UUID
	PlacedBy    uuid.UUID
	State       models.OrderState
	Quantity    int32
}

// subject — общая форма позиции каталога и дизайнерского заказа для машины состояний
type subject struct {
	ID              uuid.UUID
	MainOrderID     *uuid.UUID
	PlacedBy        uuid.UUID
	AssignedFactory *uuid.UUID
	State           models.OrderState
	Version         int64
	Quantity        int32
}

type subjectSource interface {
	load(ctx context.Context, tx *repository.Repository, id uuid.UUID) (*subject, error)
	apply(ctx context.Context, tx *repository.Repository, t repository.Transition) (bool, error)
	notFound() error
}

type lineSource struct{}

func (lineSource) load(ctx context.Context, tx *repository.Repository, id uuid.UUID) (*subject, error) {
	l, err := tx.OrderLines.GetByID(ctx, id)
	if err != nil || l == nil {
		return nil, err
	}
	mid := l.MainOrderID
	return &subject{
		ID:              l.ID,
		MainOrderID:     &mid,
		PlacedBy:        l.PlacedBy,
		AssignedFactory: l.AssignedFactory,
		State:           l.State,
		Version:         l.Version,
		Quantity:        l.Quantity,
	}, nil
}

func (lineSource) apply(ctx context.Context, tx *repository.Repository, t repository.Transition) (bool, error) {
	return tx.OrderLines.ApplyTransition(ctx, t)
}

func (lineSource) notFound() error { return ErrLineNotFound }

type designerSource struct{}

func (designerSource) load(ctx context.Context, tx *repository.Repository, id uuid.UUID) (*subject, error) {
	o, err := tx.DesignerOrders.GetByID(ctx, id)
	if err != nil || o == nil {
		return nil, err
	}
	factory := o.AssignedFactory
	return &subject{
		ID:              o.ID,
		PlacedBy:        o.PlacedBy,
		AssignedFactory: &factory,
		State:           o.State,
		Version:         o.Version,
		Quantity:        o.Quantity,
	}, nil
}

func (designerSource) apply(ctx context.Context, tx *repository.Repository, t repository.Transition) (bool, error) {
	return tx.DesignerOrders.ApplyTransition(ctx, t)
}

func (designerSource) notFound() error { return ErrDesignerOrderNotFound }

// transitioner — единый путь смены состояния: роль, загрузка, владение, таблица переходов, CAS
type transitioner struct {
	repo    *repository.Repository
	machine *fulfillment.Machine
	src     subjectSource
	options
}

func allowedRole(r models.Role, a fulfillment.Action) bool {
	switch a {
	case fulfillment.ActionAccept, fulfillment.ActionReject, fulfillment.ActionShip:
		return canFulfil(r)
	case fulfillment.ActionReceive, fulfillment.ActionReceiveWithCondition:
		return canReceive(r)
	}
	return false
}

func owns(actor Actor, a fulfillment.Action, s *subject) bool {
	switch a {
	case fulfillment.ActionAccept, fulfillment.ActionReject, fulfillment.ActionShip:
		return ownsAssignment(actor, s.AssignedFactory)
	case fulfillment.ActionReceive, fulfillment.ActionReceiveWithCondition:
		return ownsPlacement(actor, s.PlacedBy)
	}
	return false
}

func (t *transitioner) run(ctx context.Context, id uuid.UUID, action fulfillment.Action, quantity *int32) (*TransitionResult, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !allowedRole(actor.Role, action) {
		return nil, ErrForbidden
	}
	if quantity != nil && *quantity <= 0 {
		return nil, validationf("quantity must be > 0")
	}

	var (
		res  *TransitionResult
		from models.OrderState
	)
	err = t.repo.WithTx(ctx, func(tx *repository.Repository) error {
		sub, err := t.src.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if sub == nil {
			return t.src.notFound()
		}
		if !owns(actor, action, sub) {
			return ErrForbidden
		}

		to, err := t.machine.Next(sub.State, action)
		if err != nil {
			return err
		}

		ok, err := t.src.apply(ctx, tx, repository.Transition{
			ID:       sub.ID,
			From:     sub.State,
			Version:  sub.Version,
			To:       to,
			Quantity: quantity,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrConcurrentUpdate
		}

		from = sub.State
		qty := sub.Quantity
		if quantity != nil {
			qty = *quantity
		}
		res = &TransitionResult{
			Kind:        t.machine.Kind(),
			ID:          sub.ID,
			MainOrderID: sub.MainOrderID,
			PlacedBy:    sub.PlacedBy,
			State:       to,
			Quantity:    qty,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrConcurrentUpdate) {
			t.log.Warn("transition refused",
				zap.String("kind", string(t.machine.Kind())),
				zap.String("id", id.String()),
				zap.String("action", string(action)),
				zap.String("actor_id", actor.ID.String()),
				zap.Bool("strict", t.machine.Strict()),
				zap.Error(err),
			)
		}
		return nil, err
	}

	t.committed(ctx, actor, action, from, res)
	return res, nil
}

// committed логирует переход и публикует событие; ошибка публикации не откатывает переход
func (t *transitioner) committed(ctx context.Context, actor Actor, action fulfillment.Action, from models.OrderState, res *TransitionResult) {
	t.log.Info("state changed",
		zap.String("kind", string(res.Kind)),
		zap.String("id", res.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(res.State)),
		zap.String("actor_id", actor.ID.String()),
		zap.String("actor_role", string(actor.Role)),
	)
	if t.events == nil {
		return
	}
	if err := t.events.PublishFulfillment(ctx, FulfillmentEvent{
		Kind:        res.Kind,
		ItemID:      res.ID,
		MainOrderID: res.MainOrderID,
		PlacedBy:    res.PlacedBy,
		Action:      string(action),
		From:        from,
		To:          res.State,
		Quantity:    res.Quantity,
		ActorID:     actor.ID,
		ActorRole:   actor.Role,
		OccurredAt:  t.now(),
	}); err != nil {
		t.log.Warn("publish fulfillment event failed", zap.String("id", res.ID.String()), zap.Error(err))
	}
}
