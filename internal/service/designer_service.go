package service

import (
	"context"
	"strings"
	"time"

	"bakery-service/internal/fulfillment"
	"bakery-service/internal/models"
	"bakery-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlaceDesignerInput: ссылки на медиа уже сохранены загрузчиком
type PlaceDesignerInput struct {
	FactoryID        uuid.UUID
	Theme            string
	MessageOnCake    string
	Weight           float64
	PriceCents       int64
	Quantity         int32
	DesignImage      string
	PrintImage       string
	AudioInstruction *string
}

type DesignerOrderView struct {
	ID               uuid.UUID
	PlacedBy         uuid.UUID
	FactoryID        uuid.UUID
	Theme            string
	MessageOnCake    string
	Weight           float64
	PriceCents       int64
	Quantity         int32
	DesignImage      string
	PrintImage       string
	AudioInstruction *string
	State            models.OrderState
	CreatedAt        time.Time
}

type DesignerService interface {
	Place(ctx context.Context, in PlaceDesignerInput) (*DesignerOrderView, error)
	Update(ctx context.Context, id uuid.UUID, patch repository.DesignerPatch) (*DesignerOrderView, error)
	List(ctx context.Context) ([]DesignerOrderView, error)

	Accept(ctx context.Context, id uuid.UUID) (*TransitionResult, error)
	Reject(ctx context.Context, id uuid.UUID) (*TransitionResult, error)
	Ship(ctx context.Context, id uuid.UUID) (*TransitionResult, error)
	Receive(ctx context.Context, id uuid.UUID) (*TransitionResult, error)
}

type designerService struct {
	repo    *repository.Repository
	tr      *transitioner
	baseURL string
	options
}

// NewDesignerService: baseURL дописывается перед ссылками на медиа в ответах
func NewDesignerService(repo *repository.Repository, machine *fulfillment.Machine, baseURL string, opts ...Option) DesignerService {
	o := buildOptions(opts)
	return &designerService{
		repo:    repo,
		tr:      &transitioner{repo: repo, machine: machine, src: designerSource{}, options: o},
		baseURL: baseURL,
		options: o,
	}
}

func (in PlaceDesignerInput) validate() error {
	switch {
	case strings.TrimSpace(in.Theme) == "":
		return validationf("theme is required")
	case in.Weight <= 0:
		return validationf("weight must be > 0")
	case in.PriceCents <= 0:
		return validationf("price must be > 0")
	case in.Quantity <= 0:
		return validationf("quantity must be > 0")
	case in.DesignImage == "":
		return validationf("design image is required")
	case in.PrintImage == "":
		return validationf("print image is required")
	}
	return nil
}

func (s *designerService) Place(ctx context.Context, in PlaceDesignerInput) (*DesignerOrderView, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !canPlaceOrders(actor.Role) {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	factory, err := s.repo.Actors.GetByIDWithRoles(ctx, in.FactoryID, models.RoleFactory)
	if err != nil {
		return nil, err
	}
	if factory == nil {
		return nil, ErrFactoryNotFound
	}

	now := s.now()
	o := &models.DesignerOrder{
		PlacedBy:         actor.ID,
		AssignedFactory:  factory.ID,
		Theme:            strings.TrimSpace(in.Theme),
		MessageOnCake:    in.MessageOnCake,
		DesignImage:      in.DesignImage,
		PrintImage:       in.PrintImage,
		AudioInstruction: in.AudioInstruction,
		Weight:           in.Weight,
		PriceCents:       in.PriceCents,
		Quantity:         in.Quantity,
		State:            models.StatePlaced,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.DesignerOrders.Create(ctx, o); err != nil {
		return nil, err
	}

	s.log.Info("designer order placed",
		zap.String("id", o.ID.String()),
		zap.String("placed_by", actor.ID.String()),
		zap.String("factory_id", factory.ID.String()),
	)
	v := s.view(o)
	return &v, nil
}

func validatePatch(p repository.DesignerPatch) error {
	if p.Empty() {
		return validationf("nothing to update")
	}
	if p.Theme != nil && *p.Theme == "" {
		return validationf("theme must not be empty")
	}
	if p.Weight != nil && *p.Weight <= 0 {
		return validationf("weight must be > 0")
	}
	if p.PriceCents != nil && *p.PriceCents <= 0 {
		return validationf("price must be > 0")
	}
	if p.Quantity != nil && *p.Quantity <= 0 {
		return validationf("quantity must be > 0")
	}
	return nil
}

// Update не смотрит на состояние заказа: править можно и после отгрузки
func (s *designerService) Update(ctx context.Context, id uuid.UUID, patch repository.DesignerPatch) (*DesignerOrderView, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !canPlaceOrders(actor.Role) {
		return nil, ErrForbidden
	}
	if patch.Theme != nil {
		theme := strings.TrimSpace(*patch.Theme)
		patch.Theme = &theme
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var updated *models.DesignerOrder
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		o, err := tx.DesignerOrders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return ErrDesignerOrderNotFound
		}
		if !ownsPlacement(actor, o.PlacedBy) {
			return ErrForbidden
		}
		ok, err := tx.DesignerOrders.Update(ctx, o.ID, o.Version, patch)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConcurrentUpdate
		}
		patch.ApplyTo(o)
		o.Version++
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("designer order updated", zap.String("id", id.String()), zap.String("actor_id", actor.ID.String()))
	v := s.view(updated)
	return &v, nil
}

func (s *designerService) List(ctx context.Context) ([]DesignerOrderView, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	var f repository.DesignerListFilter
	switch actor.Role {
	case models.RoleStore:
		id := actor.ID
		f.PlacedBy = &id
	case models.RoleMainStore, models.RoleFactory:
	}

	list, err := s.repo.DesignerOrders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]DesignerOrderView, len(list))
	for i := range list {
		out[i] = s.view(&list[i])
	}
	return out, nil
}

func (s *designerService) Accept(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return s.tr.run(ctx, id, fulfillment.ActionAccept, nil)
}

func (s *designerService) Reject(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return s.tr.run(ctx, id, fulfillment.ActionReject, nil)
}

func (s *designerService) Ship(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return s.tr.run(ctx, id, fulfillment.ActionShip, nil)
}

func (s *designerService) Receive(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return s.tr.run(ctx, id, fulfillment.ActionReceive, nil)
}

func (s *designerService) url(ref string) string {
	if ref == "" {
		return ""
	}
	return s.baseURL + ref
}

func (s *designerService) view(o *models.DesignerOrder) DesignerOrderView {
	v := DesignerOrderView{
		ID:            o.ID,
		PlacedBy:      o.PlacedBy,
		FactoryID:     o.AssignedFactory,
		Theme:         o.Theme,
		MessageOnCake: o.MessageOnCake,
		Weight:        o.Weight,
		PriceCents:    o.PriceCents,
		Quantity:      o.Quantity,
		DesignImage:   s.url(o.DesignImage),
		PrintImage:    s.url(o.PrintImage),
		State:         o.State,
		CreatedAt:     o.CreatedAt,
	}
	if o.AudioInstruction != nil && *o.AudioInstruction != "" {
		a := s.url(*o.AudioInstruction)
		v.AudioInstruction = &a
	}
	return v
}
