package service

import (
	"context"
	"errors"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// OrderLedger is the append-only store of completed orders. Records are
// value snapshots; nothing in the catalog can retroactively change them.
type OrderLedger struct {
	store  OrderStore
	logger *zap.Logger
}

// NewOrderLedger creates a new order ledger.
func NewOrderLedger(store OrderStore) *OrderLedger {
	return &OrderLedger{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Append inserts an immutable order. Order ids come from a high-entropy
// source, so a collision is an invariant violation and is surfaced as
// fatal rather than retried.
func (l *OrderLedger) Append(ctx context.Context, order *models.Order) error {
	err := l.store.InsertOrder(ctx, order)
	if errors.Is(err, models.ErrDuplicateOrderID) {
		l.logger.Error("order id collision in ledger",
			zap.String("order_id", order.OrderID))
		return err
	}
	return err
}

// GetByID retrieves an order by its id.
func (l *OrderLedger) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	return l.store.GetOrderByID(ctx, orderID)
}
