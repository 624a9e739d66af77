package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"bakery-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceiptTotals struct {
	OrdersReceived int64
	EarningCents   int64
}

type OrderLineRepo interface {
	Create(ctx context.Context, l *models.OrderLine) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.OrderLine, error)
	ListByMainOrder(ctx context.Context, mainOrderID uuid.UUID) ([]models.OrderLine, error)
	// ListForBatch — позиции заказа, назначенные фабрике и находящиеся в состоянии state
	ListForBatch(ctx context.Context, mainOrderID, factoryID uuid.UUID, state models.OrderState) ([]models.OrderLine, error)
	// ApplyTransition возвращает false, если строка уже ушла из ожидаемого состояния/версии
	ApplyTransition(ctx context.Context, t Transition) (bool, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, version int64, quantity int32) (bool, error)
	// ReceiptTotals одним запросом считает полученные позиции каждого магазина по всем окнам:
	// result[store][i] — позиции, чей заголовок создан не раньше since[i].
	// Магазина без полученных позиций в карте нет.
	ReceiptTotals(ctx context.Context, stores []uuid.UUID, since []time.Time) (map[uuid.UUID][]ReceiptTotals, error)
}

type orderLineRepo struct{ db *gorm.DB }

func NewOrderLineRepo(db *gorm.DB) OrderLineRepo { return &orderLineRepo{db: db} }

func (r *orderLineRepo) Create(ctx context.Context, l *models.OrderLine) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *orderLineRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.OrderLine, error) {
	var l models.OrderLine
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &l, err
}

func (r *orderLineRepo) ListByMainOrder(ctx context.Context, mainOrderID uuid.UUID) ([]models.OrderLine, error) {
	var rows []models.OrderLine
	err := r.db.WithContext(ctx).Where("main_order_id = ?", mainOrderID).Order("created_at ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *orderLineRepo) ListForBatch(ctx context.Context, mainOrderID, factoryID uuid.UUID, state models.OrderState) ([]models.OrderLine, error) {
	var rows []models.OrderLine
	err := r.db.WithContext(ctx).
		Where("main_order_id = ? AND assigned_factory = ? AND state = ?", mainOrderID, factoryID, state).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *orderLineRepo) ApplyTransition(ctx context.Context, t Transition) (bool, error) {
	upd := map[string]any{
		"state":      t.To,
		"version":    gorm.Expr("version + 1"),
		"updated_at": gorm.Expr("now()"),
	}
	if t.Quantity != nil {
		upd["quantity"] = *t.Quantity
	}
	tx := r.db.WithContext(ctx).Model(&models.OrderLine{}).
		Where("id = ? AND state = ? AND version = ?", t.ID, t.From, t.Version).
		Updates(upd)
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderLineRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, version int64, quantity int32) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.OrderLine{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]any{
			"quantity":   quantity,
			"version":    gorm.Expr("version + 1"),
			"updated_at": gorm.Expr("now()"),
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *orderLineRepo) ReceiptTotals(ctx context.Context, stores []uuid.UUID, since []time.Time) (map[uuid.UUID][]ReceiptTotals, error) {
	out := make(map[uuid.UUID][]ReceiptTotals, len(stores))
	if len(stores) == 0 || len(since) == 0 {
		return out, nil
	}

	cols := make([]string, 0, 2*len(since))
	args := make([]any, 0, 2*len(since)+3)
	oldest := since[0]
	for _, t := range since {
		cols = append(cols,
			"COUNT(*) FILTER (WHERE o.created_at >= ?)",
			"COALESCE(SUM(l.price_cents * l.quantity) FILTER (WHERE o.created_at >= ?), 0)::bigint",
		)
		args = append(args, t, t)
		if t.Before(oldest) {
			oldest = t
		}
	}
	args = append(args, stores, models.ReceivedStates, oldest)

	query := "SELECT l.placed_by, " + strings.Join(cols, ", ") + `
		FROM order_lines l
		JOIN main_orders o ON o.id = l.main_order_id
		WHERE l.placed_by IN ? AND l.state IN ? AND o.created_at >= ?
		GROUP BY l.placed_by`

	rows, err := r.db.WithContext(ctx).Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var store uuid.UUID
		totals := make([]ReceiptTotals, len(since))
		dest := make([]any, 0, 1+2*len(since))
		dest = append(dest, &store)
		for i := range totals {
			dest = append(dest, &totals[i].OrdersReceived, &totals[i].EarningCents)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out[store] = totals
	}
	return out, rows.Err()
}
