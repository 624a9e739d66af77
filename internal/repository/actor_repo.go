package repository

import (
	"context"
	"errors"

	"bakery-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActorRepo interface {
	Create(ctx context.Context, a *models.Actor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Actor, error)
	// GetByIDWithRoles возвращает nil, если участника нет или его роль не из списка
	GetByIDWithRoles(ctx context.Context, id uuid.UUID, roles ...models.Role) (*models.Actor, error)
	ListByRoles(ctx context.Context, roles ...models.Role) ([]models.Actor, error)
}

type actorRepo struct{ db *gorm.DB }

func NewActorRepo(db *gorm.DB) ActorRepo { return &actorRepo{db: db} }

func (r *actorRepo) Create(ctx context.Context, a *models.Actor) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *actorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Actor, error) {
	var a models.Actor
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &a, err
}

func (r *actorRepo) GetByIDWithRoles(ctx context.Context, id uuid.UUID, roles ...models.Role) (*models.Actor, error) {
	var a models.Actor
	err := r.db.WithContext(ctx).First(&a, "id = ? AND role IN ?", id, roles).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &a, err
}

func (r *actorRepo) ListByRoles(ctx context.Context, roles ...models.Role) ([]models.Actor, error) {
	var list []models.Actor
	err := r.db.WithContext(ctx).Where("role IN ?", roles).Order("name ASC").Find(&list).Error
	return list, err
}
