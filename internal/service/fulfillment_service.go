package service

import (
	"context"

	"bakery-service/internal/fulfillment"
	"bakery-service/internal/models"
	"bakery-service/internal/repository"

	"github.com/google/uuid"
)

type BatchResult struct {
	MainOrderID uuid.UUID
	LineIDs     []uuid.UUID
	State       models.OrderState
}

type QuantityResult struct {
	ID          uuid.UUID
	MainOrderID uuid.UUID
	CakeName    string
	Quantity    int32
}

// FulfillmentService — переходы позиций каталожного заказа
type FulfillmentService interface {
	Accept(ctx context.Context, lineID uuid.UUID) (*TransitionResult, error)
	Reject(ctx context.Context, lineID uuid.UUID) (*TransitionResult, error)
	Ship(ctx context.Context, lineID uuid.UUID) (*TransitionResult, error)
	Receive(ctx context.Context, lineID uuid.UUID) (*TransitionResult, error)
	// ReceiveWithCondition меняет состояние и количество одной операцией
	ReceiveWithCondition(ctx context.Context, lineID uuid.UUID, quantity int32) (*TransitionResult, error)
	UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int32) (*QuantityResult, error)

	// AcceptAll и ShipAll выбирают позиции фабрики по состоянию и переводят их в одной транзакции
	AcceptAll(ctx context.Context, mainOrderID uuid.UUID) (*BatchResult, error)
	ShipAll(ctx context.Context, mainOrderID uuid.UUID) (*BatchResult, error)
}

type fulfillmentService struct {
	repo *repository.Repository
	tr   *transitioner
	options
}

func NewFulfillmentService(repo *repository.Repository, machine *fulfillment.Machine, opts ...Option) FulfillmentService {
	o := buildOptions(opts)
	return &fulfillmentService{
		repo:    repo,
		tr:      &transitioner{repo: repo, machine: machine, src: lineSource{}, options: o},
		options: o,
	}
}

func (s *fulfillmentService) Accept(ctx context.Context, lineID uuid.UUID) (*TransitionResult, error) {
	return s.tr.run(ctx, lineID, fulfillment.ActionAccept, nil)
}

func (s *fulfillmentService) Reject(ctx context.Context, lineID uuid.UUID) (*TransitionResult, error) {
	return s.tr.run(ctx, lineID, fulfillment.ActionReject, nil)
}

func (s *fulfillmentService) Ship(ctx context.Context, lineID uuid.UUID) (*TransitionResult, error) {
	return s.tr.run(ctx, lineID, fulfillment.ActionShip, nil)
}

func (s *fulfillmentService) Receive(ctx context.Context, lineID uuid.UUID) (*TransitionResult, error) {
	return s.tr.run(ctx, lineID, fulfillment.ActionReceive, nil)
}

func (s *fulfillmentService) ReceiveWithCondition(ctx context.Context, lineID uuid.UUID, quantity int32) (*TransitionResult, error) {
	return s.tr.run(ctx, lineID, fulfillment.ActionReceiveWithCondition, &quantity)
}

func (s *fulfillmentService) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int32) (*QuantityResult, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !canPlaceOrders(actor.Role) {
		return nil, ErrForbidden
	}
	if quantity <= 0 {
		return nil, validationf("quantity must be > 0")
	}

	var res *QuantityResult
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		l, err := tx.OrderLines.GetByID(ctx, lineID)
		if err != nil {
			return err
		}
		if l == nil {
			return ErrLineNotFound
		}
		if !ownsPlacement(actor, l.PlacedBy) {
			return ErrForbidden
		}
		ok, err := tx.OrderLines.UpdateQuantity(ctx, l.ID, l.Version, quantity)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConcurrentUpdate
		}
		res = &QuantityResult{ID: l.ID, MainOrderID: l.MainOrderID, CakeName: l.CakeName, Quantity: quantity}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *fulfillmentService) AcceptAll(ctx context.Context, mainOrderID uuid.UUID) (*BatchResult, error) {
	return s.batch(ctx, mainOrderID, models.StatePlaced, fulfillment.ActionAccept, ErrNothingToAccept)
}

func (s *fulfillmentService) ShipAll(ctx context.Context, mainOrderID uuid.UUID) (*BatchResult, error) {
	return s.batch(ctx, mainOrderID, models.StateAccepted, fulfillment.ActionShip, ErrNothingToShip)
}

// batch: предусловие по состоянию работает как фильтр выборки, а не как отказ.
// Потерянный CAS хотя бы на одной строке откатывает всю пачку.
func (s *fulfillmentService) batch(ctx context.Context, mainOrderID uuid.UUID, from models.OrderState, action fulfillment.Action, empty error) (*BatchResult, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !canFulfil(actor.Role) {
		return nil, ErrForbidden
	}

	res := &BatchResult{MainOrderID: mainOrderID}
	var moved []models.OrderLine
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		lines, err := tx.OrderLines.ListForBatch(ctx, mainOrderID, actor.ID, from)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return empty
		}
		for _, l := range lines {
			to, err := s.tr.machine.Next(l.State, action)
			if err != nil {
				return err
			}
			ok, err := tx.OrderLines.ApplyTransition(ctx, repository.Transition{
				ID: l.ID, From: l.State, Version: l.Version, To: to,
			})
			if err != nil {
				return err
			}
			if !ok {
				return ErrConcurrentUpdate
			}
			res.State = to
			res.LineIDs = append(res.LineIDs, l.ID)
		}
		moved = lines
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, l := range moved {
		mid := l.MainOrderID
		s.tr.committed(ctx, actor, action, from, &TransitionResult{
			Kind:        fulfillment.KindOrderLine,
			ID:          l.ID,
			MainOrderID: &mid,
			PlacedBy:    l.PlacedBy,
			State:       res.State,
			Quantity:    l.Quantity,
		})
	}
	return res, nil
}
