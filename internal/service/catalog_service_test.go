package service_test

import (
	"strings"
	"testing"

	"bakery-service/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogQuote_CaseInsensitive(t *testing.T) {
	f := newFixture(t)

	c, err := f.catalog.Quote(as(f.shop), "CHOCOLATE", 1)
	require.NoError(t, err)
	assert.Equal(t, "Chocolate", c.Name)
	assert.Equal(t, int64(500), c.PriceCents)

	_, err = f.catalog.Quote(as(f.shop), "Chocolate", 3)
	assert.ErrorIs(t, err, service.ErrCakeNotFound)
}

func TestCatalogAdd(t *testing.T) {
	f := newFixture(t)

	c, err := f.catalog.Add(as(f.main), service.AddCakeInput{Name: "Red Velvet", Weight: 2, PriceCents: 1200})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, c.ID)

	_, err = f.catalog.Add(as(f.main), service.AddCakeInput{Name: "red velvet", Weight: 2, PriceCents: 1300})
	assert.ErrorIs(t, err, service.ErrCakeExists)

	_, err = f.catalog.Add(as(f.shop), service.AddCakeInput{Name: "Lemon", Weight: 1, PriceCents: 100})
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = f.catalog.Add(as(f.main), service.AddCakeInput{Name: "Lemon", Weight: 1, PriceCents: 0})
	assert.ErrorIs(t, err, service.ErrValidation)

	list, err := f.catalog.List(as(f.factory))
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestCatalogUpdatePriceAndDelete(t *testing.T) {
	f := newFixture(t)

	c, err := f.catalog.UpdatePrice(as(f.main), f.chocolate.ID, 650)
	require.NoError(t, err)
	assert.Equal(t, int64(650), c.PriceCents)

	// уже созданные позиции сохраняют цену на момент заказа
	_, lineID := f.placeLine(t, f.shop, f.factory, 1)
	_, err = f.catalog.UpdatePrice(as(f.main), f.chocolate.ID, 700)
	require.NoError(t, err)
	assert.Equal(t, int64(650), f.line(t, lineID).PriceCents)

	_, err = f.catalog.UpdatePrice(as(f.main), uuid.New(), 700)
	assert.ErrorIs(t, err, service.ErrCakeNotFound)
	_, err = f.catalog.UpdatePrice(as(f.shop), f.chocolate.ID, 700)
	assert.ErrorIs(t, err, service.ErrForbidden)

	require.NoError(t, f.catalog.Delete(as(f.main), f.chocolate.ID))
	assert.ErrorIs(t, f.catalog.Delete(as(f.main), f.chocolate.ID), service.ErrCakeNotFound)
}

func TestCatalogBulkImport(t *testing.T) {
	f := newFixture(t)

	// дубль в файле, дубль каталога, пустое имя, вес вне 1..3, нулевая цена, вес не число
	csv := strings.Join([]string{
		"name,weight,price",
		"Lemon,1,4.5",
		"Lemon,1,5",
		"Chocolate,1,5",
		",2,3",
		"Mango,4,3",
		"Berry,2,0",
		"Berry,x,1",
		"Berry,3,12.999",
	}, "\n")

	res, err := f.catalog.BulkImport(as(f.main), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"Lemon (1 lb)", "Berry (3 lb)"}, res.Added)
	assert.Equal(t, 6, res.Skipped)

	c, err := f.catalog.Quote(as(f.shop), "lemon", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(450), c.PriceCents)
	c, err = f.catalog.Quote(as(f.shop), "berry", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1300), c.PriceCents)
}

func TestCatalogBulkImport_BadHeader(t *testing.T) {
	f := newFixture(t)

	_, err := f.catalog.BulkImport(as(f.main), strings.NewReader("title,weight\nA,1\n"))
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.catalog.BulkImport(as(f.main), strings.NewReader(""))
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = f.catalog.BulkImport(as(f.shop), strings.NewReader("name,weight,price\n"))
	assert.ErrorIs(t, err, service.ErrForbidden)
}
