package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"marketplace-service/internal/models"

	"github.com/lib/pq"
)

type orderRow struct {
	OrderID   string       `db:"order_id"`
	Username  string       `db:"username"`
	Products  []byte       `db:"products"`
	Amount    float64      `db:"amount"`
	CreatedAt sql.NullTime `db:"created_at"`
}

func (r *orderRow) toOrder() (*models.Order, error) {
	order := &models.Order{
		OrderID:   r.OrderID,
		Username:  r.Username,
		Amount:    r.Amount,
		CreatedAt: r.CreatedAt.Time,
		Products:  []models.Product{},
	}
	if len(r.Products) > 0 {
		if err := json.Unmarshal(r.Products, &order.Products); err != nil {
			return nil, fmt.Errorf("failed to decode order products: %w", err)
		}
	}
	return order, nil
}

// InsertOrder appends an immutable order. An id collision violates the
// ledger invariant and is reported as ErrDuplicateOrderID.
func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	products, err := json.Marshal(order.Products)
	if err != nil {
		return fmt.Errorf("failed to encode order products: %w", err)
	}

	err = s.db.GetContext(ctx, &order.CreatedAt, `
		INSERT INTO orders (order_id, username, products, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		order.OrderID, order.Username, products, order.Amount)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return models.ErrDuplicateOrderID
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// GetOrderByID retrieves an order by its id.
func (s *Store) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	var row orderRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM orders WHERE order_id = $1", orderID)
	if err == sql.ErrNoRows {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toOrder()
}
