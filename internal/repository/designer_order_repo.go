package repository

import (
	"context"
	"errors"

	"bakery-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DesignerPatch — частичное обновление; nil-поля не трогаются
type DesignerPatch struct {
	Theme            *string
	MessageOnCake    *string
	Weight           *float64
	PriceCents       *int64
	Quantity         *int32
	DesignImage      *string
	PrintImage       *string
	AudioInstruction *string
}

func (p DesignerPatch) Empty() bool {
	return p.Theme == nil && p.MessageOnCake == nil && p.Weight == nil && p.PriceCents == nil &&
		p.Quantity == nil && p.DesignImage == nil && p.PrintImage == nil && p.AudioInstruction == nil
}

func (p DesignerPatch) fields() map[string]any {
	upd := map[string]any{}
	if p.Theme != nil {
		upd["theme"] = *p.Theme
	}
	if p.MessageOnCake != nil {
		upd["message_on_cake"] = *p.MessageOnCake
	}
	if p.Weight != nil {
		upd["weight"] = *p.Weight
	}
	if p.PriceCents != nil {
		upd["price_cents"] = *p.PriceCents
	}
	if p.Quantity != nil {
		upd["quantity"] = *p.Quantity
	}
	if p.DesignImage != nil {
		upd["design_image"] = *p.DesignImage
	}
	if p.PrintImage != nil {
		upd["print_image"] = *p.PrintImage
	}
	if p.AudioInstruction != nil {
		upd["audio_instruction"] = *p.AudioInstruction
	}
	return upd
}

// ApplyTo переносит патч на уже загруженную запись
func (p DesignerPatch) ApplyTo(o *models.DesignerOrder) {
	if p.Theme != nil {
		o.Theme = *p.Theme
	}
	if p.MessageOnCake != nil {
		o.MessageOnCake = *p.MessageOnCake
	}
	if p.Weight != nil {
		o.Weight = *p.Weight
	}
	if p.PriceCents != nil {
		o.PriceCents = *p.PriceCents
	}
	if p.Quantity != nil {
		o.Quantity = *p.Quantity
	}
	if p.DesignImage != nil {
		o.DesignImage = *p.DesignImage
	}
	if p.PrintImage != nil {
		o.PrintImage = *p.PrintImage
	}
	if p.AudioInstruction != nil {
		v := *p.AudioInstruction
		o.AudioInstruction = &v
	}
}

type DesignerListFilter struct {
	PlacedBy *uuid.UUID
	Factory  *uuid.UUID
}

type DesignerOrderRepo interface {
	Create(ctx context.Context, o *models.DesignerOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DesignerOrder, error)
	List(ctx context.Context, f DesignerListFilter) ([]models.DesignerOrder, error)
	ApplyTransition(ctx context.Context, t Transition) (bool, error)
	Update(ctx context.Context, id uuid.UUID, version int64, patch DesignerPatch) (bool, error)
	// MediaRefs — все ссылки на вложения, которые ещё используются заказами
	MediaRefs(ctx context.Context) ([]string, error)
}

type designerOrderRepo struct{ db *gorm.DB }

func NewDesignerOrderRepo(db *gorm.DB) DesignerOrderRepo { return &designerOrderRepo{db: db} }

func (r *designerOrderRepo) Create(ctx context.Context, o *models.DesignerOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *designerOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.DesignerOrder, error) {
	var o models.DesignerOrder
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *designerOrderRepo) List(ctx context.Context, f DesignerListFilter) ([]models.DesignerOrder, error) {
	q := r.db.WithContext(ctx).Model(&models.DesignerOrder{})
	if f.PlacedBy != nil {
		q = q.Where("placed_by = ?", *f.PlacedBy)
	}
	if f.Factory != nil {
		q = q.Where("assigned_factory = ?", *f.Factory)
	}
	var list []models.DesignerOrder
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *designerOrderRepo) ApplyTransition(ctx context.Context, t Transition) (bool, error) {
	upd := map[string]any{
		"state":      t.To,
		"version":    gorm.Expr("version + 1"),
		"updated_at": gorm.Expr("now()"),
	}
	if t.Quantity != nil {
		upd["quantity"] = *t.Quantity
	}
	tx := r.db.WithContext(ctx).Model(&models.DesignerOrder{}).
		Where("id = ? AND state = ? AND version = ?", t.ID, t.From, t.Version).
		Updates(upd)
	return tx.RowsAffected > 0, tx.Error
}

func (r *designerOrderRepo) Update(ctx context.Context, id uuid.UUID, version int64, patch DesignerPatch) (bool, error) {
	upd := patch.fields()
	upd["version"] = gorm.Expr("version + 1")
	upd["updated_at"] = gorm.Expr("now()")
	tx := r.db.WithContext(ctx).Model(&models.DesignerOrder{}).
		Where("id = ? AND version = ?", id, version).
		Updates(upd)
	return tx.RowsAffected > 0, tx.Error
}

func (r *designerOrderRepo) MediaRefs(ctx context.Context) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT design_image FROM designer_orders
		UNION
		SELECT print_image FROM designer_orders
		UNION
		SELECT audio_instruction FROM designer_orders WHERE audio_instruction IS NOT NULL
	`).Scan(&refs).Error
	return refs, err
}
