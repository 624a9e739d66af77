package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"bakery-service/internal/fulfillment"
	"bakery-service/internal/models"
	"bakery-service/internal/repository"
	"bakery-service/internal/repository/memory"
	"bakery-service/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// recordingBus запоминает опубликованные события
type recordingBus struct {
	mu          sync.Mutex
	placed      []service.OrderPlacedEvent
	fulfillment []service.FulfillmentEvent
}

func (b *recordingBus) PublishOrderPlaced(_ context.Context, e service.OrderPlacedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.placed = append(b.placed, e)
	return nil
}

func (b *recordingBus) PublishFulfillment(_ context.Context, e service.FulfillmentEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fulfillment = append(b.fulfillment, e)
	return nil
}

func (b *recordingBus) Fulfillment() []service.FulfillmentEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]service.FulfillmentEvent(nil), b.fulfillment...)
}

type fixture struct {
	store *memory.Store
	repo  *repository.Repository
	clock *clock
	bus   *recordingBus

	main, shop, otherShop, factory, otherFactory models.Actor
	chocolate                                     models.Cake

	orders    service.OrderService
	lines     service.FulfillmentService
	designer  service.DesignerService
	analytics service.AnalyticsService
	catalog   service.CatalogService
}

type fixtureConfig struct {
	strict bool
	policy service.Policy
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, fixtureConfig{strict: true, policy: service.DefaultPolicy()})
}

func newFixtureWith(t *testing.T, cfg fixtureConfig) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		store: memory.New(),
		clock: &clock{t: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)},
		bus:   &recordingBus{},
	}
	f.repo = f.store.Repository()

	mk := func(name string, role models.Role) models.Actor {
		a := models.Actor{Name: name, Role: role, Phone: uuid.NewString()}
		require.NoError(t, f.repo.Actors.Create(ctx, &a))
		return a
	}
	f.main = mk("Central", models.RoleMainStore)
	f.shop = mk("Bakery North", models.RoleStore)
	f.otherShop = mk("Bakery South", models.RoleStore)
	f.factory = mk("Factory One", models.RoleFactory)
	f.otherFactory = mk("Factory Two", models.RoleFactory)

	f.chocolate = models.Cake{Name: "Chocolate", Weight: 1, PriceCents: 500}
	require.NoError(t, f.repo.Cakes.Create(ctx, &f.chocolate))
	vanilla := models.Cake{Name: "Vanilla", Weight: 2, PriceCents: 900}
	require.NoError(t, f.repo.Cakes.Create(ctx, &vanilla))

	opts := []service.Option{service.WithClock(f.clock.Now), service.WithEvents(f.bus)}
	f.orders = service.NewOrderService(f.repo, nil, opts...)
	f.lines = service.NewFulfillmentService(f.repo, fulfillment.NewOrderLineMachine(cfg.strict), opts...)
	f.designer = service.NewDesignerService(f.repo, fulfillment.NewDesignerOrderMachine(cfg.strict), "https://cdn.example.com/", opts...)
	f.analytics = service.NewAnalyticsService(f.repo, cfg.policy, opts...)
	f.catalog = service.NewCatalogService(f.repo, opts...)
	return f
}

func as(a models.Actor) context.Context {
	return service.WithActor(context.Background(), service.Actor{ID: a.ID, Role: a.Role})
}

func ptr[T any](v T) *T { return &v }

// placeLine создаёт заказ из одной позиции шоколадного торта на указанную фабрику
func (f *fixture) placeLine(t *testing.T, by models.Actor, factory models.Actor, qty int32) (uuid.UUID, uuid.UUID) {
	t.Helper()
	res, err := f.orders.PlaceOrder(as(by), service.PlaceOrderInput{Lines: []service.OrderLineRequest{
		{CakeName: "chocolate", Weight: 1, Quantity: qty, FactoryID: ptr(factory.ID)},
	}})
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	require.False(t, res.Lines[0].Failed(), res.Lines[0].Error)
	return res.MainOrderID, *res.Lines[0].LineID
}

func (f *fixture) line(t *testing.T, id uuid.UUID) models.OrderLine {
	t.Helper()
	l, err := f.repo.OrderLines.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, l)
	return *l
}

// shipped доводит позицию до SHIPPED
func (f *fixture) shipped(t *testing.T, qty int32) (uuid.UUID, uuid.UUID) {
	t.Helper()
	orderID, lineID := f.placeLine(t, f.shop, f.factory, qty)
	_, err := f.lines.Accept(as(f.factory), lineID)
	require.NoError(t, err)
	_, err = f.lines.Ship(as(f.factory), lineID)
	require.NoError(t, err)
	return orderID, lineID
}
