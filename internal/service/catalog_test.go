package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndGetRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	added := env.addProduct(t, "Guava cupcake", 4.99, 51)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, testURI(added.ID), added.URI)

	got, err := env.catalog.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Guava cupcake", got.Title)
	assert.Equal(t, 4.99, got.Price)
	assert.Equal(t, 51, got.InventoryCount)
	assert.Equal(t, added.URI, got.URI)
}

func TestAddValidationOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		title     string
		price     interface{}
		inventory interface{}
		wantMsg   string
	}{
		{"missing title", "", 12.49, 23, "Title of product is missing"},
		{"price not a number", "Mango cake", "sgsg", 23, "Price of product has to be a number"},
		{"price negative", "Mango cake", -234, 23, "Price of product has to be non-negative"},
		{"inventory not an integer", "Mango cake", 12.40, 45.2, "Inventory of product has to be a number"},
		{"inventory negative", "Mango cake", 12.40, -26, "Inventory of product has to be non-negative"},
		// title is checked before everything else
		{"first failing check wins", "", "sgsg", -26, "Title of product is missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.catalog.Add(ctx, tt.title, tt.price, tt.inventory)
			require.Error(t, err)
			assert.True(t, models.IsValidation(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestZeroInventoryHiddenButStored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	added := env.addProduct(t, "Strawberry tart", 8.49, 0)

	_, err := env.catalog.Get(ctx, added.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	listed, err := env.catalog.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	found, err := env.catalog.Search(ctx, "tart")
	require.NoError(t, err)
	assert.Empty(t, found)

	// The record still exists underneath; historical orders depend on that.
	raw, err := env.store.GetProduct(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Strawberry tart", raw.Title)
}

func TestSearchCaseInsensitiveSubstring(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addProduct(t, "Guava cupcake", 4.99, 51)
	env.addProduct(t, "Orange cupcake", 7.99, 12)
	env.addProduct(t, "Mango pizza", 15.65, 18)

	found, err := env.catalog.Search(ctx, "PCaK")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Guava cupcake", found[0].Title)
	assert.Equal(t, "Orange cupcake", found[1].Title)

	// no match is a valid outcome, not an error
	none, err := env.catalog.Search(ctx, "durian")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	added := env.addProduct(t, "Strawberry tart", 8.49, 27)

	before, err := env.catalog.Get(ctx, added.ID)
	require.NoError(t, err)

	removed, err := env.catalog.Delete(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, before, removed)

	_, err = env.catalog.Get(ctx, added.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	_, err = env.catalog.Delete(ctx, added.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestDecrementOneStopsAtZero(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	added := env.addProduct(t, "Mango cake", 12.40, 2)

	p, err := env.catalog.DecrementOne(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.InventoryCount)

	p, err = env.catalog.DecrementOne(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.InventoryCount)

	_, err = env.catalog.DecrementOne(ctx, added.ID)
	assert.ErrorIs(t, err, models.ErrOutOfStock)

	raw, err := env.store.GetProduct(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, raw.InventoryCount)
}

func TestDecrementOneMissingProduct(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.DecrementOne(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestDecrementOneConcurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const stock = 5
	const callers = 20

	added := env.addProduct(t, "Mango pizza", 15.65, stock)

	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.catalog.DecrementOne(ctx, added.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded, outOfStock := 0, 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrOutOfStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, stock, succeeded)
	assert.Equal(t, callers-stock, outOfStock)

	raw, err := env.store.GetProduct(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, raw.InventoryCount)
}
