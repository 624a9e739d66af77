package repository

import (
	"context"
	"errors"

	"bakery-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CatalogRepo interface {
	Create(ctx context.Context, c *models.Cake) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Cake, error)
	// FindByNameWeight ищет позицию без учёта регистра имени
	FindByNameWeight(ctx context.Context, name string, weight int32) (*models.Cake, error)
	List(ctx context.Context) ([]models.Cake, error)
	UpdatePrice(ctx context.Context, id uuid.UUID, priceCents int64) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepo(db *gorm.DB) CatalogRepo { return &catalogRepo{db: db} }

func (r *catalogRepo) Create(ctx context.Context, c *models.Cake) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *catalogRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Cake, error) {
	var c models.Cake
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *catalogRepo) FindByNameWeight(ctx context.Context, name string, weight int32) (*models.Cake, error) {
	var c models.Cake
	err := r.db.WithContext(ctx).First(&c, "lower(name) = lower(?) AND weight = ?", name, weight).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *catalogRepo) List(ctx context.Context) ([]models.Cake, error) {
	var list []models.Cake
	err := r.db.WithContext(ctx).Order("name ASC, weight ASC").Find(&list).Error
	return list, err
}

func (r *catalogRepo) UpdatePrice(ctx context.Context, id uuid.UUID, priceCents int64) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Cake{}).Where("id = ?", id).Updates(map[string]any{
		"price_cents": priceCents,
		"updated_at":  gorm.Expr("now()"),
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *catalogRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Cake{})
	return tx.RowsAffected > 0, tx.Error
}
