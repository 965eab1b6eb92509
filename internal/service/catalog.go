package service

import (
	"context"
	"math"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// URIResolver maps a product id to its stable external reference. The
// services only ever compare the result for equality, never parse it.
type URIResolver func(productID string) string

// CatalogService owns product records and the inventory invariant.
type CatalogService struct {
	store     ProductStore
	inventory *InventoryGuard
	publisher *broker.EventPublisher
	uriFor    URIResolver
	logger    *zap.Logger
}

// NewCatalogService creates a new catalog service. publisher may be nil
// when no broker is configured.
func NewCatalogService(
	store ProductStore,
	inventory *InventoryGuard,
	publisher *broker.EventPublisher,
	uriFor URIResolver,
) *CatalogService {
	return &CatalogService{
		store:     store,
		inventory: inventory,
		publisher: publisher,
		uriFor:    uriFor,
		logger:    util.GetLogger(),
	}
}

// asPrice accepts a decoded JSON value as a price. encoding/json hands
// numbers over as float64, but direct callers may pass ints.
func asPrice(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// asCount accepts a decoded JSON value as an inventory count. A float
// with a fractional part is not a count.
func asCount(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.Trunc(n) != n {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

// Add validates and inserts a new product. The checks run in a fixed
// order and the first failing one wins: title, price type, price sign,
// inventory type, inventory sign.
func (s *CatalogService) Add(ctx context.Context, title string, price, inventory interface{}) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Add")
	defer span.End()

	if title == "" {
		return nil, models.Validationf("title", "Title of product is missing")
	}
	priceVal, ok := asPrice(price)
	if !ok {
		return nil, models.Validationf("price", "Price of product has to be a number")
	}
	if priceVal < 0 {
		return nil, models.Validationf("price", "Price of product has to be non-negative")
	}
	count, ok := asCount(inventory)
	if !ok {
		return nil, models.Validationf("inventory_count", "Inventory of product has to be a number")
	}
	if count < 0 {
		return nil, models.Validationf("inventory_count", "Inventory of product has to be non-negative")
	}

	product := &models.Product{
		ID:             uuid.New().String(),
		Title:          title,
		Price:          priceVal,
		InventoryCount: count,
	}
	product.URI = s.uriFor(product.ID)

	if err := s.store.InsertProduct(ctx, product); err != nil {
		return nil, err
	}
	s.inventory.Track(ctx, product)

	util.ProductsCreatedTotal.Inc()
	s.logger.Info("product added",
		zap.String("product_id", product.ID),
		zap.String("title", product.Title))

	if s.publisher != nil {
		if err := s.publisher.PublishProductAdded(ctx, product); err != nil {
			s.logger.Error("failed to publish ProductAdded event", zap.Error(err))
		}
	}

	return product, nil
}

// Get returns a product only while it has stock; a drained record still
// exists (historical orders keep snapshots of it) but is invisible here.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.store.GetVisibleProduct(ctx, id)
}

// List returns all visible products.
func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.store.ListVisibleProducts(ctx)
}

// Search finds visible products whose title contains the given text,
// case-insensitively. An empty result is a valid outcome, not an error;
// the transport layer decides what to make of it.
func (s *CatalogService) Search(ctx context.Context, title string) ([]models.Product, error) {
	return s.store.SearchVisibleProducts(ctx, title)
}

// Delete hard-removes a product and returns the removed record. Carts and
// orders that still reference the id are left alone; cart resolution
// degrades gracefully and orders hold value copies.
func (s *CatalogService) Delete(ctx context.Context, id string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.Delete")
	defer span.End()

	product, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	s.inventory.Forget(ctx, id)

	util.ProductsDeletedTotal.Inc()
	s.logger.Info("product deleted",
		zap.String("product_id", id),
		zap.String("title", product.Title))

	if s.publisher != nil {
		if err := s.publisher.PublishProductDeleted(ctx, product); err != nil {
			s.logger.Error("failed to publish ProductDeleted event", zap.Error(err))
		}
	}

	return product, nil
}

// DecrementOne atomically reduces a product's stock by one, never below
// zero. Returns the post-decrement record.
func (s *CatalogService) DecrementOne(ctx context.Context, id string) (*models.Product, error) {
	return s.inventory.DecrementOne(ctx, id)
}

// RestoreOne gives one unit back, compensating an aborted checkout.
func (s *CatalogService) RestoreOne(ctx context.Context, id string) error {
	return s.inventory.RestoreOne(ctx, id)
}
