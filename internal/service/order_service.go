package service

import (
	"context"
	"fmt"
	"strings"

	"bakery-service/internal/models"
	"bakery-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type orderService struct {
	repo *repository.Repository
	idem IdempotencyGuard
	options
}

// NewOrderService: idem может быть nil — тогда ключ идемпотентности игнорируется
func NewOrderService(repo *repository.Repository, idem IdempotencyGuard, opts ...Option) OrderService {
	return &orderService{
		repo:    repo,
		idem:    idem,
		options: buildOptions(opts),
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResult, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !canPlaceOrders(actor.Role) {
		return nil, ErrForbidden
	}
	if len(in.Lines) == 0 {
		return nil, validationf("order must contain at least one line")
	}

	var idemKey string
	if key := strings.TrimSpace(in.IdempotencyKey); key != "" && s.idem != nil {
		idemKey = fmt.Sprintf("order:%s:%s", actor.ID, key)
		ok, err := s.idem.Reserve(ctx, idemKey)
		if err != nil {
			return nil, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if !ok {
			return nil, ErrDuplicateRequest
		}
	}

	now := s.now()
	res := &PlaceOrderResult{Lines: make([]LineResult, 0, len(in.Lines))}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		// заголовок создаётся всегда, даже если ни одна позиция не пройдёт проверку
		header := &models.MainOrder{PlacedBy: actor.ID, CreatedAt: now}
		if err := tx.MainOrders.Create(ctx, header); err != nil {
			return err
		}
		res.MainOrderID = header.ID
		res.CreatedAt = header.CreatedAt

		for _, item := range in.Lines {
			lr, err := s.placeLine(ctx, tx, actor, header, item)
			if err != nil {
				return err
			}
			res.Lines = append(res.Lines, lr)
		}
		return nil
	})
	if err != nil {
		if idemKey != "" {
			if rerr := s.idem.Release(ctx, idemKey); rerr != nil {
				s.log.Warn("release idempotency key failed", zap.String("key", idemKey), zap.Error(rerr))
			}
		}
		return nil, err
	}

	created := make([]uuid.UUID, 0, len(res.Lines))
	for _, lr := range res.Lines {
		if lr.LineID != nil {
			created = append(created, *lr.LineID)
		}
	}
	s.log.Info("main order placed",
		zap.String("main_order_id", res.MainOrderID.String()),
		zap.String("placed_by", actor.ID.String()),
		zap.Int("requested", len(in.Lines)),
		zap.Int("created", len(created)),
	)

	if s.events != nil {
		if err := s.events.PublishOrderPlaced(ctx, OrderPlacedEvent{
			MainOrderID: res.MainOrderID,
			PlacedBy:    actor.ID,
			LineIDs:     created,
			CreatedAt:   res.CreatedAt,
		}); err != nil {
			s.log.Warn("publish order placed failed", zap.String("main_order_id", res.MainOrderID.String()), zap.Error(err))
		}
	}

	return res, nil
}

// placeLine возвращает error только при сбое хранилища; ошибки позиции уходят в LineResult
func (s *orderService) placeLine(ctx context.Context, tx *repository.Repository, actor Actor, header *models.MainOrder, item OrderLineRequest) (LineResult, error) {
	lr := LineResult{Cake: item.CakeName, Weight: item.Weight, Quantity: item.Quantity}

	if item.Quantity <= 0 {
		lr.Error = lineErrQuantity
		return lr, nil
	}

	var factory *models.Actor
	if item.FactoryID != nil {
		f, err := tx.Actors.GetByIDWithRoles(ctx, *item.FactoryID, models.RoleFactory)
		if err != nil {
			return lr, err
		}
		if f == nil {
			lr.Error = lineErrFactoryNotFound
			return lr, nil
		}
		factory = f
	}

	cake, err := tx.Cakes.FindByNameWeight(ctx, strings.TrimSpace(item.CakeName), item.Weight)
	if err != nil {
		return lr, err
	}
	if cake == nil {
		lr.Error = lineErrCakeNotFound
		return lr, nil
	}

	line := &models.OrderLine{
		MainOrderID: header.ID,
		PlacedBy:    actor.ID,
		CakeName:    cake.Name,
		Weight:      cake.Weight,
		PriceCents:  cake.PriceCents,
		Quantity:    item.Quantity,
		State:       models.StatePlaced,
		CreatedAt:   header.CreatedAt,
		UpdatedAt:   header.CreatedAt,
	}
	if factory != nil {
		id := factory.ID
		line.AssignedFactory = &id
		lr.FactoryID = &id
		lr.FactoryName = factory.Name
	}
	if err := tx.OrderLines.Create(ctx, line); err != nil {
		return lr, err
	}

	id := line.ID
	lr.LineID = &id
	lr.Cake = line.CakeName
	lr.Weight = line.Weight
	lr.PriceCents = line.PriceCents
	lr.State = line.State
	return lr, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*MainOrderView, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	ord, err := s.repo.MainOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrMainOrderNotFound
	}

	switch actor.Role {
	case models.RoleMainStore:
	case models.RoleStore:
		if ord.PlacedBy != actor.ID {
			return nil, ErrForbidden
		}
	case models.RoleFactory:
		// фабрика видит только свои позиции
		mine := ord.Lines[:0:0]
		for _, l := range ord.Lines {
			if ownsAssignment(actor, l.AssignedFactory) {
				mine = append(mine, l)
			}
		}
		if len(mine) == 0 {
			return nil, ErrForbidden
		}
		ord.Lines = mine
	}

	return &MainOrderView{MainOrder: *ord, Status: DeriveMainOrderStatus(ord.Lines)}, nil
}

func (s *orderService) ListOrders(ctx context.Context, f ListFilter) ([]MainOrderView, int64, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, 0, err
	}

	f = f.Normalize()
	rf := repository.MainOrderListFilter{Limit: f.Limit, Offset: f.Offset}
	switch actor.Role {
	case models.RoleMainStore:
		rf.PlacedBy = f.PlacedBy
	case models.RoleStore:
		id := actor.ID
		rf.PlacedBy = &id
	case models.RoleFactory:
		id := actor.ID
		rf.Factory = &id
	}

	list, total, err := s.repo.MainOrders.List(ctx, rf)
	if err != nil {
		return nil, 0, err
	}

	out := make([]MainOrderView, len(list))
	for i, o := range list {
		out[i] = MainOrderView{MainOrder: o, Status: DeriveMainOrderStatus(o.Lines)}
	}
	return out, total, nil
}
