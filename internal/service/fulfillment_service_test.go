package service_test

import (
	"context"
	"sync"
	"testing"

	"bakery-service/internal/fulfillment"
	"bakery-service/internal/models"
	"bakery-service/internal/repository"
	"bakery-service/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineLifecycle_HappyPath(t *testing.T) {
	f := newFixture(t)
	orderID, lineID := f.placeLine(t, f.shop, f.factory, 2)

	r, err := f.lines.Accept(as(f.factory), lineID)
	require.NoError(t, err)
	assert.Equal(t, models.StateAccepted, r.State)
	require.NotNil(t, r.MainOrderID)
	assert.Equal(t, orderID, *r.MainOrderID)

	r, err = f.lines.Ship(as(f.factory), lineID)
	require.NoError(t, err)
	assert.Equal(t, models.StateShipped, r.State)

	r, err = f.lines.Receive(as(f.shop), lineID)
	require.NoError(t, err)
	assert.Equal(t, models.StateReceived, r.State)

	l := f.line(t, lineID)
	assert.Equal(t, models.StateReceived, l.State)
	assert.Equal(t, int64(3), l.Version)

	ev := f.bus.Fulfillment()
	require.Len(t, ev, 3)
	assert.Equal(t, models.StatePlaced, ev[0].From)
	assert.Equal(t, models.StateAccepted, ev[0].To)
	assert.Equal(t, fulfillment.KindOrderLine, ev[2].Kind)
	assert.Equal(t, f.shop.ID, ev[2].ActorID)
}

func TestLineTransitions_Authorization(t *testing.T) {
	f := newFixture(t)
	_, lineID := f.placeLine(t, f.shop, f.factory, 1)

	// магазин не может принять, чужая фабрика — тоже
	_, err := f.lines.Accept(as(f.shop), lineID)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = f.lines.Accept(as(f.otherFactory), lineID)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = f.lines.Reject(as(f.main), lineID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.lines.Accept(as(f.factory), uuid.New())
	assert.ErrorIs(t, err, service.ErrLineNotFound)

	assert.Equal(t, models.StatePlaced, f.line(t, lineID).State)
}

func TestLineTransitions_UnassignedLineCannotBeAccepted(t *testing.T) {
	f := newFixture(t)
	res, err := f.orders.PlaceOrder(as(f.shop), service.PlaceOrderInput{Lines: []service.OrderLineRequest{
		{CakeName: "Chocolate", Weight: 1, Quantity: 1},
	}})
	require.NoError(t, err)

	_, err = f.lines.Accept(as(f.factory), *res.Lines[0].LineID)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestReceive_OwnershipRules(t *testing.T) {
	f := newFixture(t)
	_, lineID := f.shipped(t, 1)

	_, err := f.lines.Receive(as(f.otherShop), lineID)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = f.lines.Receive(as(f.factory), lineID)
	assert.ErrorIs(t, err, service.ErrForbidden)

	// главный магазин принимает чужие позиции
	r, err := f.lines.Receive(as(f.main), lineID)
	require.NoError(t, err)
	assert.Equal(t, models.StateReceived, r.State)
}

func TestStrictMode_RejectsOutOfOrderTransitions(t *testing.T) {
	f := newFixture(t)
	_, lineID := f.shipped(t, 1)

	_, err := f.lines.Accept(as(f.factory), lineID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	_, err = f.lines.Reject(as(f.factory), lineID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	assert.Equal(t, models.StateShipped, f.line(t, lineID).State)

	_, placed := f.placeLine(t, f.shop, f.factory, 1)
	_, err = f.lines.Receive(as(f.shop), placed)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	_, err = f.lines.Ship(as(f.factory), placed)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
	assert.Equal(t, models.StatePlaced, f.line(t, placed).State)
}

func TestLenientMode_SkipsPriorStateExceptShip(t *testing.T) {
	f := newFixtureWith(t, fixtureConfig{strict: false, policy: service.DefaultPolicy()})
	_, lineID := f.shipped(t, 1)

	r, err := f.lines.Accept(as(f.factory), lineID)
	require.NoError(t, err)
	assert.Equal(t, models.StateAccepted, r.State)

	_, placed := f.placeLine(t, f.shop, f.factory, 1)
	r, err = f.lines.Receive(as(f.shop), placed)
	require.NoError(t, err)
	assert.Equal(t, models.StateReceived, r.State)

	_, other := f.placeLine(t, f.shop, f.factory, 1)
	_, err = f.lines.Ship(as(f.factory), other)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestReceiveWithCondition_SetsStateAndQuantityTogether(t *testing.T) {
	f := newFixture(t)
	_, lineID := f.shipped(t, 5)

	r, err := f.lines.ReceiveWithCondition(as(f.shop), lineID, 3)
	require.NoError(t, err)
	assert.Equal(t, models.StateReceivedWithCondition, r.State)
	assert.Equal(t, int32(3), r.Quantity)

	l := f.line(t, lineID)
	assert.Equal(t, models.StateReceivedWithCondition, l.State)
	assert.Equal(t, int32(3), l.Quantity)
}

func TestReceiveWithCondition_FailureChangesNothing(t *testing.T) {
	f := newFixture(t)
	_, lineID := f.placeLine(t, f.shop, f.factory, 5)

	_, err := f.lines.ReceiveWithCondition(as(f.shop), lineID, 3)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	_, err = f.lines.ReceiveWithCondition(as(f.shop), lineID, 0)
	assert.ErrorIs(t, err, service.ErrValidation)

	l := f.line(t, lineID)
	assert.Equal(t, models.StatePlaced, l.State)
	assert.Equal(t, int32(5), l.Quantity)
}

func TestUpdateQuantity(t *testing.T) {
	f := newFixture(t)
	_, lineID := f.placeLine(t, f.shop, f.factory, 1)

	r, err := f.lines.UpdateQuantity(as(f.shop), lineID, 7)
	require.NoError(t, err)
	assert.Equal(t, int32(7), r.Quantity)

	l := f.line(t, lineID)
	assert.Equal(t, int32(7), l.Quantity)
	assert.Equal(t, models.StatePlaced, l.State)

	_, err = f.lines.UpdateQuantity(as(f.otherShop), lineID, 2)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = f.lines.UpdateQuantity(as(f.factory), lineID, 2)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = f.lines.UpdateQuantity(as(f.shop), lineID, -1)
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.lines.UpdateQuantity(as(f.main), lineID, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(4), f.line(t, lineID).Quantity)
}

func TestAcceptAll_TwiceIsNotFound(t *testing.T) {
	f := newFixture(t)
	res, err := f.orders.PlaceOrder(as(f.shop), service.PlaceOrderInput{Lines: []service.OrderLineRequest{
		{CakeName: "Chocolate", Weight: 1, Quantity: 1, FactoryID: ptr(f.factory.ID)},
		{CakeName: "Vanilla", Weight: 2, Quantity: 2, FactoryID: ptr(f.factory.ID)},
		{CakeName: "Vanilla", Weight: 2, Quantity: 2, FactoryID: ptr(f.otherFactory.ID)},
	}})
	require.NoError(t, err)
	mine := []uuid.UUID{*res.Lines[0].LineID, *res.Lines[1].LineID}
	foreign := *res.Lines[2].LineID

	b, err := f.lines.AcceptAll(as(f.factory), res.MainOrderID)
	require.NoError(t, err)
	assert.Equal(t, models.StateAccepted, b.State)
	assert.ElementsMatch(t, mine, b.LineIDs)

	_, err = f.lines.AcceptAll(as(f.factory), res.MainOrderID)
	assert.ErrorIs(t, err, service.ErrNothingToAccept)
	assert.ErrorIs(t, err, service.ErrNotFound)

	for _, id := range mine {
		l := f.line(t, id)
		assert.Equal(t, models.StateAccepted, l.State)
		assert.Equal(t, int64(1), l.Version)
	}
	assert.Equal(t, models.StatePlaced, f.line(t, foreign).State)
}

func TestShipAll_OnlyAcceptedLines(t *testing.T) {
	f := newFixture(t)
	res, err := f.orders.PlaceOrder(as(f.shop), service.PlaceOrderInput{Lines: []service.OrderLineRequest{
		{CakeName: "Chocolate", Weight: 1, Quantity: 1, FactoryID: ptr(f.factory.ID)},
		{CakeName: "Vanilla", Weight: 2, Quantity: 1, FactoryID: ptr(f.factory.ID)},
	}})
	require.NoError(t, err)
	first, second := *res.Lines[0].LineID, *res.Lines[1].LineID

	_, err = f.lines.ShipAll(as(f.factory), res.MainOrderID)
	assert.ErrorIs(t, err, service.ErrNothingToShip)

	_, err = f.lines.Accept(as(f.factory), first)
	require.NoError(t, err)

	b, err := f.lines.ShipAll(as(f.factory), res.MainOrderID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first}, b.LineIDs)
	assert.Equal(t, models.StateShipped, f.line(t, first).State)
	assert.Equal(t, models.StatePlaced, f.line(t, second).State)

	_, err = f.lines.ShipAll(as(f.shop), res.MainOrderID)
	assert.ErrorIs(t, err, service.ErrForbidden)
}

// casLoser проигрывает CAS на заданной по счёту строке
type casLoser struct {
	repository.OrderLineRepo
	calls  *int
	loseAt int
}

func (c casLoser) ApplyTransition(ctx context.Context, tr repository.Transition) (bool, error) {
	*c.calls++
	if *c.calls == c.loseAt {
		return false, nil
	}
	return c.OrderLineRepo.ApplyTransition(ctx, tr)
}

func TestAcceptAll_LostCASRollsBackWholeBatch(t *testing.T) {
	f := newFixture(t)
	res, err := f.orders.PlaceOrder(as(f.shop), service.PlaceOrderInput{Lines: []service.OrderLineRequest{
		{CakeName: "Chocolate", Weight: 1, Quantity: 1, FactoryID: ptr(f.factory.ID)},
		{CakeName: "Vanilla", Weight: 2, Quantity: 1, FactoryID: ptr(f.factory.ID)},
	}})
	require.NoError(t, err)

	calls := 0
	tx := txFunc(func(ctx context.Context, fn func(tx *repository.Repository) error) error {
		return f.store.WithTx(ctx, func(tx *repository.Repository) error {
			tx.OrderLines = casLoser{OrderLineRepo: tx.OrderLines, calls: &calls, loseAt: 2}
			return fn(tx)
		})
	})
	repo := repository.Compose(f.repo.Actors, f.repo.Cakes, f.repo.MainOrders, f.repo.OrderLines, f.repo.DesignerOrders, tx)
	svc := service.NewFulfillmentService(repo, fulfillment.NewOrderLineMachine(true))

	_, err = svc.AcceptAll(as(f.factory), res.MainOrderID)
	require.ErrorIs(t, err, service.ErrConcurrentUpdate)

	for _, lr := range res.Lines {
		l := f.line(t, *lr.LineID)
		assert.Equal(t, models.StatePlaced, l.State)
		assert.Zero(t, l.Version)
	}
}

func TestConcurrentAccept_ExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	_, lineID := f.placeLine(t, f.shop, f.factory, 1)

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		errs []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.lines.Accept(as(f.factory), lineID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			errs = append(errs, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	for _, err := range errs {
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	}
	assert.Equal(t, int64(1), f.line(t, lineID).Version)
}

func TestStatesStayWithinTable(t *testing.T) {
	f := newFixture(t)
	_, a := f.placeLine(t, f.shop, f.factory, 1)
	_, b := f.shipped(t, 1)

	ops := []func(id uuid.UUID){
		func(id uuid.UUID) { _, _ = f.lines.Accept(as(f.factory), id) },
		func(id uuid.UUID) { _, _ = f.lines.Reject(as(f.factory), id) },
		func(id uuid.UUID) { _, _ = f.lines.Ship(as(f.factory), id) },
		func(id uuid.UUID) { _, _ = f.lines.Receive(as(f.shop), id) },
		func(id uuid.UUID) { _, _ = f.lines.ReceiveWithCondition(as(f.shop), id, 1) },
	}
	for round := 0; round < 3; round++ {
		for _, op := range ops {
			op(a)
			op(b)
			for _, id := range []uuid.UUID{a, b} {
				assert.True(t, f.line(t, id).State.Valid())
			}
		}
	}
}
