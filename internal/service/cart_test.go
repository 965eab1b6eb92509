package service

import (
	"context"
	"testing"

	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemDuplicatesCountTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := env.addProduct(t, "Guava cupcake", 4.99, 51)
	env.addUser(t, "Uraraka")

	for i := 0; i < 2; i++ {
		snapshot, err := env.cart.AddItem(ctx, "Uraraka", p.ID)
		require.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.Equal(t, p.ID, snapshot.ID)
	}

	view, err := env.cart.Resolve(ctx, "Uraraka")
	require.NoError(t, err)
	require.Len(t, view.Products, 2)
	assert.InDelta(t, 9.98, view.TotalPrice, 1e-9)
}

func TestAddItemDoesNotCheckExistence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addUser(t, "Midoriya")

	// adding an unknown product succeeds; resolution is lazy
	snapshot, err := env.cart.AddItem(ctx, "Midoriya", "no-such-id")
	require.NoError(t, err)
	assert.Nil(t, snapshot)

	user, err := env.store.GetUser(ctx, "Midoriya")
	require.NoError(t, err)
	assert.Equal(t, []string{"no-such-id"}, user.Cart)
}

func TestAddItemUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.cart.AddItem(context.Background(), "nobody", "p1")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestRemoveItemFirstOccurrenceOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := env.addProduct(t, "Guava cupcake", 4.99, 51)
	q := env.addProduct(t, "Orange cupcake", 7.99, 12)
	env.addUser(t, "Uraraka")

	for _, id := range []string{p.ID, q.ID, p.ID} {
		_, err := env.cart.AddItem(ctx, "Uraraka", id)
		require.NoError(t, err)
	}

	_, err := env.cart.RemoveItem(ctx, "Uraraka", p.ID)
	require.NoError(t, err)

	user, err := env.store.GetUser(ctx, "Uraraka")
	require.NoError(t, err)
	assert.Equal(t, []string{q.ID, p.ID}, user.Cart)
}

func TestRemoveItemNotInCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := env.addProduct(t, "Guava cupcake", 4.99, 51)
	env.addUser(t, "Uraraka")

	// the product exists, it just is not in the cart
	_, err := env.cart.RemoveItem(ctx, "Uraraka", p.ID)
	assert.ErrorIs(t, err, models.ErrItemNotInCart)
}

func TestResolveExcludesDanglingEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := env.addProduct(t, "Guava cupcake", 4.99, 51)
	q := env.addProduct(t, "Orange cupcake", 7.99, 12)
	env.addUser(t, "Midoriya")

	for _, id := range []string{p.ID, q.ID} {
		_, err := env.cart.AddItem(ctx, "Midoriya", id)
		require.NoError(t, err)
	}

	// delete q after it was cart-added; resolution degrades gracefully
	_, err := env.catalog.Delete(ctx, q.ID)
	require.NoError(t, err)

	view, err := env.cart.Resolve(ctx, "Midoriya")
	require.NoError(t, err)
	require.Len(t, view.Products, 1)
	assert.Equal(t, p.ID, view.Products[0].ID)
	assert.InDelta(t, 4.99, view.TotalPrice, 1e-9)
}

func TestResolveExcludesDrainedEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := env.addProduct(t, "Mango cake", 12.40, 1)
	env.addUser(t, "Midoriya")

	_, err := env.cart.AddItem(ctx, "Midoriya", p.ID)
	require.NoError(t, err)

	_, err = env.catalog.DecrementOne(ctx, p.ID)
	require.NoError(t, err)

	view, err := env.cart.Resolve(ctx, "Midoriya")
	require.NoError(t, err)
	assert.Empty(t, view.Products)
	assert.Zero(t, view.TotalPrice)
}

func TestClearIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p := env.addProduct(t, "Guava cupcake", 4.99, 51)
	env.addUser(t, "Uraraka")

	_, err := env.cart.AddItem(ctx, "Uraraka", p.ID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		view, err := env.cart.Clear(ctx, "Uraraka")
		require.NoError(t, err)
		assert.Empty(t, view.Products)
		assert.Zero(t, view.TotalPrice)
	}

	view, err := env.cart.Resolve(ctx, "Uraraka")
	require.NoError(t, err)
	assert.Empty(t, view.Products)
}
