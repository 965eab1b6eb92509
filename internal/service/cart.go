package service

import (
	"context"
	"errors"
	"sync"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// CartService owns the per-user carts: ordered lists of product ids with
// duplicates allowed. Mutations for one user are serialized behind a
// per-user lock, which checkout also takes so that an AddItem cannot slip
// between its cart read and cart reset.
type CartService struct {
	users   UserStore
	catalog *CatalogService
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCartService creates a new cart service.
func NewCartService(users UserStore, catalog *CatalogService) *CartService {
	return &CartService{
		users:   users,
		catalog: catalog,
		logger:  util.GetLogger(),
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *CartService) userLock(username string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[username]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[username] = lock
	}
	return lock
}

// withUserLock runs fn while holding the user's cart lock. Checkout uses
// it to span its whole read-decrement-append-reset sequence.
func (s *CartService) withUserLock(username string, fn func() error) error {
	lock := s.userLock(username)
	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// AddItem appends a product id to the user's cart. The product is not
// checked for existence or stock here; resolution is lazy. Returns the
// current visible snapshot of the product when there is one.
func (s *CartService) AddItem(ctx context.Context, username, productID string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CartService.AddItem")
	defer span.End()

	var product *models.Product
	err := s.withUserLock(username, func() error {
		user, err := s.users.GetUser(ctx, username)
		if err != nil {
			return err
		}

		if err := s.users.UpdateCart(ctx, username, append(user.Cart, productID)); err != nil {
			return err
		}

		product, err = s.catalog.Get(ctx, productID)
		if err != nil && !errors.Is(err, models.ErrProductNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.CartItemsAddedTotal.Inc()
	s.logger.Info("item added to cart",
		zap.String("username", username),
		zap.String("product_id", productID))
	return product, nil
}

// RemoveItem removes the first occurrence of a product id from the cart.
// Fails with models.ErrItemNotInCart when no occurrence exists, which is
// distinct from the product itself being gone.
func (s *CartService) RemoveItem(ctx context.Context, username, productID string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CartService.RemoveItem")
	defer span.End()

	var product *models.Product
	err := s.withUserLock(username, func() error {
		user, err := s.users.GetUser(ctx, username)
		if err != nil {
			return err
		}

		idx := -1
		for i, id := range user.Cart {
			if id == productID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return models.ErrItemNotInCart
		}

		cart := append(append([]string{}, user.Cart[:idx]...), user.Cart[idx+1:]...)
		if err := s.users.UpdateCart(ctx, username, cart); err != nil {
			return err
		}

		product, err = s.catalog.Get(ctx, productID)
		if err != nil && !errors.Is(err, models.ErrProductNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	util.CartItemsRemovedTotal.Inc()
	s.logger.Info("item removed from cart",
		zap.String("username", username),
		zap.String("product_id", productID))
	return product, nil
}

// Resolve looks up every cart entry and builds the derived view. Entries
// that no longer resolve, because the product was deleted or drained since
// being added, are excluded from the view and its total rather than
// failing the whole resolution. Remaining lines keep cart order.
func (s *CartService) Resolve(ctx context.Context, username string) (*models.CartView, error) {
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.resolveCart(ctx, user.Cart)
}

func (s *CartService) resolveCart(ctx context.Context, cart []string) (*models.CartView, error) {
	view := &models.CartView{Products: []models.Product{}}
	for _, productID := range cart {
		product, err := s.catalog.Get(ctx, productID)
		if errors.Is(err, models.ErrProductNotFound) {
			s.logger.Debug("skipping dangling cart entry", zap.String("product_id", productID))
			continue
		}
		if err != nil {
			return nil, err
		}
		view.Products = append(view.Products, *product)
		view.TotalPrice += product.Price
	}
	return view, nil
}

// Clear resets the cart to empty and returns the now-empty view.
// Idempotent.
func (s *CartService) Clear(ctx context.Context, username string) (*models.CartView, error) {
	ctx, span := util.StartSpan(ctx, "CartService.Clear")
	defer span.End()

	err := s.withUserLock(username, func() error {
		return s.clearCart(ctx, username)
	})
	if err != nil {
		return nil, err
	}
	return &models.CartView{Products: []models.Product{}}, nil
}

func (s *CartService) clearCart(ctx context.Context, username string) error {
	if _, err := s.users.GetUser(ctx, username); err != nil {
		return err
	}
	return s.users.UpdateCart(ctx, username, []string{})
}
