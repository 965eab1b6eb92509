// Package memory provides an in-memory implementation of the document
// store used by the services. It backs the unit tests, which exercise the
// domain logic without Postgres, and mirrors the storage semantics of the
// SQL store including the atomic conditional decrement.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace-service/internal/models"
)

type Store struct {
	mu       sync.RWMutex
	products map[string]*models.Product
	users    map[string]*models.User
	orders   map[string]*models.Order
}

func NewStore() *Store {
	return &Store{
		products: make(map[string]*models.Product),
		users:    make(map[string]*models.User),
		orders:   make(map[string]*models.Order),
	}
}

func cloneProduct(p *models.Product) *models.Product {
	cp := *p
	return &cp
}

// InsertProduct stores a new catalog record.
func (s *Store) InsertProduct(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = cloneProduct(p)
	return nil
}

// GetVisibleProduct retrieves a product by id, hiding zero-stock records.
func (s *Store) GetVisibleProduct(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok || p.InventoryCount <= 0 {
		return nil, models.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

// GetProduct retrieves a product by id regardless of stock.
func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

// ListVisibleProducts retrieves all products with inventory greater than zero.
func (s *Store) ListVisibleProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.InventoryCount > 0 {
			products = append(products, *p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Title < products[j].Title })
	return products, nil
}

// SearchVisibleProducts performs a case-insensitive substring match over
// visible products.
func (s *Store) SearchVisibleProducts(ctx context.Context, title string) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(title)
	var products []models.Product
	for _, p := range s.products {
		if p.InventoryCount > 0 && strings.Contains(strings.ToLower(p.Title), needle) {
			products = append(products, *p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Title < products[j].Title })
	return products, nil
}

// DeleteProduct hard-removes a record and returns it.
func (s *Store) DeleteProduct(ctx context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	delete(s.products, id)
	return p, nil
}

// DecrementInventory atomically reduces inventory_count by one, refusing
// to go below zero.
func (s *Store) DecrementInventory(ctx context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	if p.InventoryCount <= 0 {
		return nil, models.ErrOutOfStock
	}
	p.InventoryCount--
	return cloneProduct(p), nil
}

// IncrementInventory restores one unit.
func (s *Store) IncrementInventory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return models.ErrProductNotFound
	}
	p.InventoryCount++
	return nil
}

func cloneUser(u *models.User) *models.User {
	cu := *u
	cu.Cart = append([]string{}, u.Cart...)
	return &cu
}

// InsertUser stores a new user.
func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = cloneUser(user)
	return nil
}

// GetUser retrieves a user with their cart by username.
func (s *Store) GetUser(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return cloneUser(u), nil
}

// GetUserByEmail retrieves a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, models.ErrUserNotFound
}

// UpdateCart replaces a user's cart list.
func (s *Store) UpdateCart(ctx context.Context, username string, cart []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return models.ErrUserNotFound
	}
	u.Cart = append([]string{}, cart...)
	return nil
}

func cloneOrder(o *models.Order) *models.Order {
	co := *o
	co.Products = append([]models.Product{}, o.Products...)
	return &co
}

// InsertOrder appends an immutable order, rejecting id collisions.
func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.OrderID]; ok {
		return models.ErrDuplicateOrderID
	}
	order.CreatedAt = time.Now()
	s.orders[order.OrderID] = cloneOrder(order)
	return nil
}

// GetOrderByID retrieves an order by its id.
func (s *Store) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}
