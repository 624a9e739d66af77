package service

import (
	"context"
	"time"

	"bakery-service/internal/models"
	"bakery-service/internal/repository"

	"github.com/google/uuid"
)

type Window struct {
	Label    string
	Duration time.Duration
}

const day = 24 * time.Hour

// Windows — окна аналитики, отсчитываются назад от одного и того же "сейчас"
var Windows = []Window{
	{Label: "1_day", Duration: day},
	{Label: "3_days", Duration: 3 * day},
	{Label: "1_week", Duration: 7 * day},
	{Label: "1_month", Duration: 30 * day},
	{Label: "1_year", Duration: 365 * day},
}

type PeriodStats struct {
	OrdersReceived    int64
	TotalEarningCents int64
}

type StoreResult struct {
	StoreID   uuid.UUID
	StoreName string
	Periods   map[string]PeriodStats
}

type AnalyticsService interface {
	// StoreReceipts: target == nil — свой магазин (MAIN_STORE дополнительно получает все остальные)
	StoreReceipts(ctx context.Context, target *uuid.UUID) ([]StoreResult, error)
}

type analyticsService struct {
	repo   *repository.Repository
	policy Policy
	options
}

func NewAnalyticsService(repo *repository.Repository, policy Policy, opts ...Option) AnalyticsService {
	return &analyticsService{repo: repo, policy: policy, options: buildOptions(opts)}
}

func (s *analyticsService) StoreReceipts(ctx context.Context, target *uuid.UUID) ([]StoreResult, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !actor.Role.IsStore() {
		return nil, ErrForbidden
	}

	stores, err := s.selectStores(ctx, actor, target)
	if err != nil {
		return nil, err
	}

	// все магазины и окна считаются одним запросом от одного "сейчас",
	// поэтому окна вложены друг в друга и не расходятся из-за параллельных receive
	now := s.now()
	since := make([]time.Time, len(Windows))
	for i, w := range Windows {
		since[i] = now.Add(-w.Duration)
	}
	ids := make([]uuid.UUID, len(stores))
	for i := range stores {
		ids[i] = stores[i].ID
	}
	totals, err := s.repo.OrderLines.ReceiptTotals(ctx, ids, since)
	if err != nil {
		return nil, err
	}

	out := make([]StoreResult, len(stores))
	for i := range stores {
		out[i] = storeResult(&stores[i], totals[stores[i].ID])
	}
	return out, nil
}

// selectStores: чужой магазин по capability, иначе свой; MAIN_STORE без target получает ещё и остальные
func (s *analyticsService) selectStores(ctx context.Context, actor Actor, target *uuid.UUID) ([]models.Actor, error) {
	if target != nil && *target != actor.ID {
		if !s.policy.Has(actor, CapViewAnyStoreAnalytics) {
			return nil, ErrForbidden
		}
		store, err := s.repo.Actors.GetByIDWithRoles(ctx, *target, models.StoreRoles...)
		if err != nil {
			return nil, err
		}
		if store == nil {
			return nil, ErrStoreNotFound
		}
		return []models.Actor{*store}, nil
	}

	self, err := s.repo.Actors.GetByIDWithRoles(ctx, actor.ID, models.StoreRoles...)
	if err != nil {
		return nil, err
	}
	if self == nil {
		return nil, ErrStoreNotFound
	}
	out := []models.Actor{*self}

	// явный запрос своего id — только своя карточка, как у STORE
	if target != nil || actor.Role != models.RoleMainStore {
		return out, nil
	}

	others, err := s.repo.Actors.ListByRoles(ctx, models.StoreRoles...)
	if err != nil {
		return nil, err
	}
	for i := range others {
		if others[i].ID != actor.ID {
			out = append(out, others[i])
		}
	}
	return out, nil
}

func storeResult(store *models.Actor, totals []repository.ReceiptTotals) StoreResult {
	res := StoreResult{
		StoreID:   store.ID,
		StoreName: store.Name,
		Periods:   make(map[string]PeriodStats, len(Windows)),
	}
	for i, w := range Windows {
		var t repository.ReceiptTotals
		if i < len(totals) {
			t = totals[i]
		}
		res.Periods[w.Label] = PeriodStats{OrdersReceived: t.OrdersReceived, TotalEarningCents: t.EarningCents}
	}
	return res
}
