package repository

import (
	"context"

	"bakery-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transition — условное обновление состояния (compare-and-set по state и version)
type Transition struct {
	ID      uuid.UUID
	From    models.OrderState
	Version int64
	To      models.OrderState
	// Quantity, если задано, записывается в той же операции
	Quantity *int32
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *Repository) error) error
}

type Repository struct {
	DB             *gorm.DB
	Actors         ActorRepo
	Cakes          CatalogRepo
	MainOrders     MainOrderRepo
	OrderLines     OrderLineRepo
	DesignerOrders DesignerOrderRepo

	tx Transactor
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:             db,
		Actors:         NewActorRepo(db),
		Cakes:          NewCatalogRepo(db),
		MainOrders:     NewMainOrderRepo(db),
		OrderLines:     NewOrderLineRepo(db),
		DesignerOrders: NewDesignerOrderRepo(db),
		tx:             gormTx{db: db},
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// Compose собирает Repository из произвольных реализаций (in-memory хранилище в тестах).
func Compose(actors ActorRepo, cakes CatalogRepo, orders MainOrderRepo, lines OrderLineRepo, designer DesignerOrderRepo, tx Transactor) *Repository {
	return &Repository{
		Actors:         actors,
		Cakes:          cakes,
		MainOrders:     orders,
		OrderLines:     lines,
		DesignerOrders: designer,
		tx:             tx,
	}
}

// WithTx выполняет fn в одной транзакции; внутри fn нужно пользоваться только tx.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return r.tx.WithTx(ctx, fn)
}

type gormTx struct{ db *gorm.DB }

func (g gormTx) WithTx(ctx context.Context, fn func(tx *Repository) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
