package store

import (
	"context"
	"database/sql"
	"fmt"

	"marketplace-service/internal/models"
)

// InsertProduct stores a new catalog record.
func (s *Store) InsertProduct(ctx context.Context, p *models.Product) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO products (id, title, price, inventory_count, uri) VALUES ($1, $2, $3, $4, $5)",
		p.ID, p.Title, p.Price, p.InventoryCount, p.URI)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// GetVisibleProduct retrieves a product by id, hiding zero-stock records.
func (s *Store) GetVisibleProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 AND inventory_count > 0", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProduct retrieves a product by id regardless of stock. Used by order
// materialization and deletion, never by catalog browsing.
func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListVisibleProducts retrieves all products with inventory greater than zero.
func (s *Store) ListVisibleProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE inventory_count > 0 ORDER BY title")
	return products, err
}

// SearchVisibleProducts performs a case-insensitive substring match over
// visible products.
func (s *Store) SearchVisibleProducts(ctx context.Context, title string) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE title ILIKE '%' || $1 || '%' AND inventory_count > 0 ORDER BY title",
		title)
	return products, err
}

// DeleteProduct hard-removes a record and returns it for the caller to echo
// back. No tombstone is kept; carts and orders referencing the id keep
// snapshots, not live references.
func (s *Store) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"DELETE FROM products WHERE id = $1 RETURNING *", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	return &product, nil
}

// DecrementInventory atomically reduces inventory_count by one. The
// conditional update is a single-statement read-modify-write, so two
// concurrent checkouts can never both take the last unit.
func (s *Store) DecrementInventory(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"UPDATE products SET inventory_count = inventory_count - 1 WHERE id = $1 AND inventory_count > 0 RETURNING *",
		id)
	if err == sql.ErrNoRows {
		// Distinguish a missing record from a drained one.
		var exists bool
		if err := s.db.GetContext(ctx, &exists,
			"SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", id); err != nil {
			return nil, err
		}
		if exists {
			return nil, models.ErrOutOfStock
		}
		return nil, models.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decrement inventory: %w", err)
	}
	return &product, nil
}

// IncrementInventory restores one unit. Compensation primitive for aborted
// checkouts.
func (s *Store) IncrementInventory(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET inventory_count = inventory_count + 1 WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to increment inventory: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrProductNotFound
	}
	return nil
}
