package service

import (
	"context"
	"testing"

	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerAppendAndGet(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := &models.Order{
		OrderID:  "274a5c89-f9ad-4043-a07c-0d545512291b",
		Username: "Midoriya",
		Products: []models.Product{{ID: "p1", Title: "Orange cupcake", Price: 7.99}},
		Amount:   7.99,
	}
	require.NoError(t, env.ledger.Append(ctx, order))

	got, err := env.ledger.GetByID(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.Username, got.Username)
	assert.InDelta(t, order.Amount, got.Amount, 1e-9)
	require.Len(t, got.Products, 1)
	assert.Equal(t, "Orange cupcake", got.Products[0].Title)
}

func TestLedgerGetMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.ledger.GetByID(context.Background(), "no-such-order")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestLedgerRejectsDuplicateID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := &models.Order{OrderID: "dup", Username: "Midoriya", Amount: 1}
	require.NoError(t, env.ledger.Append(ctx, order))

	clash := &models.Order{OrderID: "dup", Username: "Uraraka", Amount: 2}
	err := env.ledger.Append(ctx, clash)
	assert.ErrorIs(t, err, models.ErrDuplicateOrderID)

	// the original record is untouched
	got, err := env.ledger.GetByID(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "Midoriya", got.Username)
}

func TestLedgerRecordsAreImmutable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := &models.Order{
		OrderID:  "imm",
		Username: "Midoriya",
		Products: []models.Product{{ID: "p1", Title: "Guava cupcake", Price: 4.99}},
		Amount:   4.99,
	}
	require.NoError(t, env.ledger.Append(ctx, order))

	got, err := env.ledger.GetByID(ctx, "imm")
	require.NoError(t, err)
	got.Products[0].Title = "tampered"
	got.Amount = 0

	again, err := env.ledger.GetByID(ctx, "imm")
	require.NoError(t, err)
	assert.Equal(t, "Guava cupcake", again.Products[0].Title)
	assert.InDelta(t, 4.99, again.Amount, 1e-9)
}
