package service_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"bakery-service/internal/repository"
	"bakery-service/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreReceipts_WindowsAndStates(t *testing.T) {
	f := newFixture(t)

	// принятая позиция из заказа двухдневной давности и ещё не принятая
	_, received := f.shipped(t, 2)
	_, err := f.lines.Receive(as(f.shop), received)
	require.NoError(t, err)
	f.placeLine(t, f.shop, f.factory, 4)
	f.clock.Advance(2 * 24 * time.Hour)

	res, err := f.analytics.StoreReceipts(as(f.shop), nil)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, f.shop.ID, res[0].StoreID)
	assert.Equal(t, "Bakery North", res[0].StoreName)

	p := res[0].Periods
	require.Len(t, p, 5)
	assert.Equal(t, service.PeriodStats{}, p["1_day"])
	for _, label := range []string{"3_days", "1_week", "1_month", "1_year"} {
		assert.Equal(t, service.PeriodStats{OrdersReceived: 1, TotalEarningCents: 1000}, p[label], label)
	}
}

func TestStoreReceipts_ReceivedWithConditionUsesCorrectedQuantity(t *testing.T) {
	f := newFixture(t)
	_, lineID := f.shipped(t, 5)
	_, err := f.lines.ReceiveWithCondition(as(f.shop), lineID, 3)
	require.NoError(t, err)

	res, err := f.analytics.StoreReceipts(as(f.shop), nil)
	require.NoError(t, err)
	assert.Equal(t, service.PeriodStats{OrdersReceived: 1, TotalEarningCents: 1500}, res[0].Periods["1_day"])
}

func TestStoreReceipts_MainStoreGetsEveryStoreOnce(t *testing.T) {
	f := newFixture(t)

	res, err := f.analytics.StoreReceipts(as(f.main), nil)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, f.main.ID, res[0].StoreID)

	seen := map[uuid.UUID]int{}
	for _, r := range res {
		seen[r.StoreID]++
	}
	assert.Equal(t, map[uuid.UUID]int{f.main.ID: 1, f.shop.ID: 1, f.otherShop.ID: 1}, seen)
}

// Любой магазин видит аналитику другого магазина при открытой политике
func TestStoreReceipts_StoreMayViewOtherStore(t *testing.T) {
	f := newFixture(t)

	res, err := f.analytics.StoreReceipts(as(f.shop), ptr(f.otherShop.ID))
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, f.otherShop.ID, res[0].StoreID)
}

func TestStoreReceipts_MainStoreOnlyPolicy(t *testing.T) {
	f := newFixtureWith(t, fixtureConfig{
		strict: true,
		policy: service.Policy{AnalyticsScope: service.AnalyticsScopeMainStoreOnly},
	})

	_, err := f.analytics.StoreReceipts(as(f.shop), ptr(f.otherShop.ID))
	assert.ErrorIs(t, err, service.ErrForbidden)

	res, err := f.analytics.StoreReceipts(as(f.shop), ptr(f.shop.ID))
	require.NoError(t, err)
	assert.Len(t, res, 1)

	res, err = f.analytics.StoreReceipts(as(f.main), ptr(f.otherShop.ID))
	require.NoError(t, err)
	assert.Equal(t, f.otherShop.ID, res[0].StoreID)
}

func TestStoreReceipts_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.analytics.StoreReceipts(as(f.factory), nil)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.analytics.StoreReceipts(as(f.shop), ptr(f.factory.ID))
	assert.ErrorIs(t, err, service.ErrStoreNotFound)

	_, err = f.analytics.StoreReceipts(as(f.main), ptr(uuid.New()))
	assert.ErrorIs(t, err, service.ErrNotFound)
}

type countingLines struct {
	repository.OrderLineRepo
	calls atomic.Int32
}

func (c *countingLines) ReceiptTotals(ctx context.Context, stores []uuid.UUID, since []time.Time) (map[uuid.UUID][]repository.ReceiptTotals, error) {
	c.calls.Add(1)
	return c.OrderLineRepo.ReceiptTotals(ctx, stores, since)
}

// Все магазины и окна читаются одним запросом, окна вложены друг в друга
func TestStoreReceipts_SingleSnapshot(t *testing.T) {
	f := newFixture(t)

	_, first := f.shipped(t, 1)
	_, err := f.lines.Receive(as(f.shop), first)
	require.NoError(t, err)
	f.clock.Advance(4 * 24 * time.Hour)
	_, second := f.shipped(t, 3)
	_, err = f.lines.Receive(as(f.shop), second)
	require.NoError(t, err)

	lines := &countingLines{OrderLineRepo: f.repo.OrderLines}
	repo := *f.repo
	repo.OrderLines = lines
	analytics := service.NewAnalyticsService(&repo, service.DefaultPolicy(), service.WithClock(f.clock.Now))

	res, err := analytics.StoreReceipts(as(f.main), nil)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.EqualValues(t, 1, lines.calls.Load())

	var shop service.StoreResult
	for _, r := range res {
		if r.StoreID == f.shop.ID {
			shop = r
		}
	}
	assert.Equal(t, service.PeriodStats{OrdersReceived: 1, TotalEarningCents: 1500}, shop.Periods["1_day"])
	assert.Equal(t, service.PeriodStats{OrdersReceived: 1, TotalEarningCents: 1500}, shop.Periods["3_days"])
	assert.Equal(t, service.PeriodStats{OrdersReceived: 2, TotalEarningCents: 2000}, shop.Periods["1_week"])

	for _, r := range res {
		for i := 1; i < len(service.Windows); i++ {
			narrow, wide := r.Periods[service.Windows[i-1].Label], r.Periods[service.Windows[i].Label]
			assert.LessOrEqual(t, narrow.OrdersReceived, wide.OrdersReceived)
			assert.LessOrEqual(t, narrow.TotalEarningCents, wide.TotalEarningCents)
		}
	}
}

func TestWindows(t *testing.T) {
	labels := make([]string, len(service.Windows))
	for i, w := range service.Windows {
		labels[i] = w.Label
	}
	assert.Equal(t, []string{"1_day", "3_days", "1_week", "1_month", "1_year"}, labels)
	assert.Equal(t, 30*24*time.Hour, service.Windows[3].Duration)
	assert.Equal(t, 365*24*time.Hour, service.Windows[4].Duration)
}
