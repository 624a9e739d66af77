package repository

import (
	"context"
	"errors"

	"bakery-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MainOrderListFilter struct {
	PlacedBy *uuid.UUID
	// Factory оставляет только заказы с позициями этой фабрики и подгружает только их
	Factory *uuid.UUID
	Limit   int
	Offset  int
}

type MainOrderRepo interface {
	Create(ctx context.Context, o *models.MainOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MainOrder, error)
	List(ctx context.Context, f MainOrderListFilter) ([]models.MainOrder, int64, error)
}

type mainOrderRepo struct{ db *gorm.DB }

func NewMainOrderRepo(db *gorm.DB) MainOrderRepo { return &mainOrderRepo{db: db} }

func (r *mainOrderRepo) Create(ctx context.Context, o *models.MainOrder) error {
	// позиции создаются отдельно, по одной, после проверки каталога
	return r.db.WithContext(ctx).Omit("Lines").Create(o).Error
}

func (r *mainOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MainOrder, error) {
	var o models.MainOrder
	err := r.db.WithContext(ctx).Preload("Lines", orderLinesByCreation).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *mainOrderRepo) List(ctx context.Context, f MainOrderListFilter) ([]models.MainOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.MainOrder{})

	if f.PlacedBy != nil {
		q = q.Where("placed_by = ?", *f.PlacedBy)
	}
	if f.Factory != nil {
		q = q.Where("EXISTS (SELECT 1 FROM order_lines l WHERE l.main_order_id = main_orders.id AND l.assigned_factory = ?)", *f.Factory)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	preload := orderLinesByCreation
	if f.Factory != nil {
		factory := *f.Factory
		preload = func(db *gorm.DB) *gorm.DB {
			return orderLinesByCreation(db).Where("assigned_factory = ?", factory)
		}
	}

	var list []models.MainOrder
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Preload("Lines", preload).Find(&list).Error
	return list, total, err
}

func orderLinesByCreation(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}
