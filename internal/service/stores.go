package service

import (
	"context"

	"marketplace-service/internal/models"
)

// The services own these interfaces; both the Postgres store and the
// in-memory test store satisfy them. The storage layer offers no
// multi-record transactions, so every method is a single atomic
// get/insert/update/remove against one record set.

// ProductStore persists catalog records.
type ProductStore interface {
	InsertProduct(ctx context.Context, p *models.Product) error
	GetVisibleProduct(ctx context.Context, id string) (*models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListVisibleProducts(ctx context.Context) ([]models.Product, error)
	SearchVisibleProducts(ctx context.Context, title string) ([]models.Product, error)
	DeleteProduct(ctx context.Context, id string) (*models.Product, error)
	DecrementInventory(ctx context.Context, id string) (*models.Product, error)
	IncrementInventory(ctx context.Context, id string) error
}

// UserStore persists users and their carts.
type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateCart(ctx context.Context, username string, cart []string) error
}

// OrderStore persists the append-only order ledger.
type OrderStore interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, orderID string) (*models.Order, error)
}
