package service

import (
	"context"

	"bakery-service/internal/models"
	"bakery-service/internal/repository"

	"github.com/google/uuid"
)

type DirectoryService interface {
	ListStores(ctx context.Context) ([]models.Actor, error)
	ListFactories(ctx context.Context) ([]models.Actor, error)
	// Resolve возвращает участника только если его роль совпадает с ожидаемой
	Resolve(ctx context.Context, id uuid.UUID, role models.Role) (*models.Actor, error)
}

type directoryService struct {
	repo *repository.Repository
}

func NewDirectoryService(repo *repository.Repository) DirectoryService {
	return &directoryService{repo: repo}
}

func (s *directoryService) ListStores(ctx context.Context) ([]models.Actor, error) {
	return s.repo.Actors.ListByRoles(ctx, models.StoreRoles...)
}

func (s *directoryService) ListFactories(ctx context.Context) ([]models.Actor, error) {
	return s.repo.Actors.ListByRoles(ctx, models.RoleFactory)
}

func (s *directoryService) Resolve(ctx context.Context, id uuid.UUID, role models.Role) (*models.Actor, error) {
	a, err := s.repo.Actors.GetByIDWithRoles(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if a == nil {
		switch role {
		case models.RoleFactory:
			return nil, ErrFactoryNotFound
		case models.RoleMainStore, models.RoleStore:
			return nil, ErrStoreNotFound
		}
		return nil, ErrNotFound
	}
	return a, nil
}
