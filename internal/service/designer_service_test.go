package service_test

import (
	"context"
	"testing"

	"bakery-service/internal/fulfillment"
	"bakery-service/internal/models"
	"bakery-service/internal/repository"
	"bakery-service/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func designerInput(factory uuid.UUID) service.PlaceDesignerInput {
	return service.PlaceDesignerInput{
		FactoryID:     factory,
		Theme:         "Unicorn",
		MessageOnCake: "Happy birthday",
		Weight:        1.5,
		PriceCents:    2500,
		Quantity:      1,
		DesignImage:   "designs/a.png",
		PrintImage:    "prints/a.png",
	}
}

func (f *fixture) placeDesigner(t *testing.T) uuid.UUID {
	t.Helper()
	v, err := f.designer.Place(as(f.shop), designerInput(f.factory.ID))
	require.NoError(t, err)
	return v.ID
}

func TestDesignerPlace(t *testing.T) {
	f := newFixture(t)

	in := designerInput(f.factory.ID)
	in.AudioInstruction = ptr("audio/a.mp3")
	v, err := f.designer.Place(as(f.shop), in)
	require.NoError(t, err)
	assert.Equal(t, models.StatePlaced, v.State)
	assert.Equal(t, "https://cdn.example.com/designs/a.png", v.DesignImage)
	require.NotNil(t, v.AudioInstruction)
	assert.Equal(t, "https://cdn.example.com/audio/a.mp3", *v.AudioInstruction)

	// в хранилище лежат ссылки без префикса
	o, err := f.repo.DesignerOrders.GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, "designs/a.png", o.DesignImage)
}

func TestDesignerPlace_Errors(t *testing.T) {
	f := newFixture(t)

	_, err := f.designer.Place(as(f.factory), designerInput(f.factory.ID))
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.designer.Place(as(f.shop), designerInput(f.otherShop.ID))
	assert.ErrorIs(t, err, service.ErrFactoryNotFound)

	_, err = f.designer.Place(as(f.shop), designerInput(uuid.New()))
	assert.ErrorIs(t, err, service.ErrNotFound)

	noPrint := designerInput(f.factory.ID)
	noPrint.PrintImage = ""
	_, err = f.designer.Place(as(f.shop), noPrint)
	assert.ErrorIs(t, err, service.ErrValidation)

	zeroPrice := designerInput(f.factory.ID)
	zeroPrice.PriceCents = 0
	_, err = f.designer.Place(as(f.shop), zeroPrice)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestDesignerShip_RequiresAccepted(t *testing.T) {
	for _, strict := range []bool{true, false} {
		f := newFixtureWith(t, fixtureConfig{strict: strict, policy: service.DefaultPolicy()})
		id := f.placeDesigner(t)

		_, err := f.designer.Ship(as(f.factory), id)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)

		o, err := f.repo.DesignerOrders.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.StatePlaced, o.State)

		_, err = f.designer.Accept(as(f.factory), id)
		require.NoError(t, err)
		r, err := f.designer.Ship(as(f.factory), id)
		require.NoError(t, err)
		assert.Equal(t, models.StateShipped, r.State)
		assert.Equal(t, fulfillment.KindDesignerOrder, r.Kind)
		assert.Nil(t, r.MainOrderID)

		_, err = f.designer.Ship(as(f.factory), id)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)

		r, err = f.designer.Receive(as(f.shop), id)
		require.NoError(t, err)
		assert.Equal(t, models.StateReceived, r.State)
	}
}

func TestDesignerTransitions_Ownership(t *testing.T) {
	f := newFixture(t)
	id := f.placeDesigner(t)

	_, err := f.designer.Accept(as(f.otherFactory), id)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = f.designer.Reject(as(f.shop), id)
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = f.designer.Accept(as(f.factory), uuid.New())
	assert.ErrorIs(t, err, service.ErrDesignerOrderNotFound)

	r, err := f.designer.Reject(as(f.factory), id)
	require.NoError(t, err)
	assert.Equal(t, models.StateRejected, r.State)
}

func TestDesignerUpdate(t *testing.T) {
	f := newFixture(t)
	id := f.placeDesigner(t)

	v, err := f.designer.Update(as(f.shop), id, repository.DesignerPatch{
		Theme:       ptr("Dragons"),
		Quantity:    ptr(int32(3)),
		DesignImage: ptr("designs/b.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dragons", v.Theme)
	assert.Equal(t, int32(3), v.Quantity)
	assert.Equal(t, "https://cdn.example.com/designs/b.png", v.DesignImage)
	assert.Equal(t, "https://cdn.example.com/prints/a.png", v.PrintImage)

	_, err = f.designer.Update(as(f.otherShop), id, repository.DesignerPatch{Theme: ptr("x")})
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = f.designer.Update(as(f.factory), id, repository.DesignerPatch{Theme: ptr("x")})
	assert.ErrorIs(t, err, service.ErrForbidden)
	_, err = f.designer.Update(as(f.shop), id, repository.DesignerPatch{})
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = f.designer.Update(as(f.shop), id, repository.DesignerPatch{Weight: ptr(0.0)})
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = f.designer.Update(as(f.shop), id, repository.DesignerPatch{Theme: ptr("   ")})
	assert.ErrorIs(t, err, service.ErrValidation)

	// тема сохраняется без пробелов по краям, как при создании
	v, err = f.designer.Update(as(f.shop), id, repository.DesignerPatch{Theme: ptr("  Unicorns \t")})
	require.NoError(t, err)
	assert.Equal(t, "Unicorns", v.Theme)
	stored, err := f.repo.DesignerOrders.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Unicorns", stored.Theme)

	// правка не зависит от состояния
	_, err = f.designer.Reject(as(f.factory), id)
	require.NoError(t, err)
	v, err = f.designer.Update(as(f.main), id, repository.DesignerPatch{PriceCents: ptr(int64(3000))})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), v.PriceCents)
	assert.Equal(t, models.StateRejected, v.State)
}

func TestDesignerList_StoreSeesOwn(t *testing.T) {
	f := newFixture(t)
	f.placeDesigner(t)
	_, err := f.designer.Place(as(f.otherShop), designerInput(f.otherFactory.ID))
	require.NoError(t, err)

	list, err := f.designer.List(as(f.shop))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.shop.ID, list[0].PlacedBy)

	for _, a := range []models.Actor{f.main, f.factory} {
		list, err = f.designer.List(as(a))
		require.NoError(t, err)
		assert.Len(t, list, 2)
	}
}
