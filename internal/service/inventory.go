package service

import (
	"context"
	"errors"

	"marketplace-service/internal/models"
	"marketplace-service/internal/redisclient"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// InventoryGuard serializes stock mutation at product granularity. The
// store's conditional decrement is the authoritative compare-and-decrement;
// when a Redis cache is configured it acts as a fast-reject in front of the
// store, so concurrent checkouts for a drained product are turned away
// before touching the database.
type InventoryGuard struct {
	store  ProductStore
	cache  *redisclient.Client
	logger *zap.Logger
}

// NewInventoryGuard creates a new inventory guard. cache may be nil, in
// which case every decrement goes straight to the store.
func NewInventoryGuard(store ProductStore, cache *redisclient.Client) *InventoryGuard {
	return &InventoryGuard{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// DecrementOne atomically takes one unit of stock and returns the
// post-decrement record. Fails with models.ErrOutOfStock when the count is
// already zero; the count is never driven below zero.
func (g *InventoryGuard) DecrementOne(ctx context.Context, productID string) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "InventoryGuard.DecrementOne")
	defer span.End()

	fromCache := false
	if g.cache != nil {
		_, ok, err := g.cache.DecrementStock(ctx, productID)
		switch {
		case err != nil:
			g.logger.Warn("stock cache unavailable, using store only",
				zap.String("product_id", productID),
				zap.Error(err))
		case ok:
			fromCache = true
		default:
			// The cache may simply not know this product yet; the store
			// below stays authoritative and the cache gets repaired.
		}
	}

	product, err := g.store.DecrementInventory(ctx, productID)
	if err != nil {
		if fromCache {
			// Give the unit back so the cache does not under-count.
			if cerr := g.cache.IncrementStock(ctx, productID); cerr != nil {
				g.logger.Error("failed to restore cached stock",
					zap.String("product_id", productID),
					zap.Error(cerr))
			}
		}
		if errors.Is(err, models.ErrOutOfStock) {
			util.OutOfStockTotal.Inc()
		}
		return nil, err
	}

	if g.cache != nil && !fromCache {
		if cerr := g.cache.InitStock(ctx, productID, product.InventoryCount); cerr != nil {
			g.logger.Error("failed to repair stock cache",
				zap.String("product_id", productID),
				zap.Error(cerr))
		}
	}

	util.StockDecrementsTotal.Inc()
	return product, nil
}

// RestoreOne gives one unit back. Compensation primitive for aborted
// checkouts.
func (g *InventoryGuard) RestoreOne(ctx context.Context, productID string) error {
	ctx, span := util.StartSpan(ctx, "InventoryGuard.RestoreOne")
	defer span.End()

	if g.cache != nil {
		if err := g.cache.IncrementStock(ctx, productID); err != nil {
			g.logger.Error("failed to restore cached stock",
				zap.String("product_id", productID),
				zap.Error(err))
		}
	}
	return g.store.IncrementInventory(ctx, productID)
}

// Track seeds the cache with a product's stock count.
func (g *InventoryGuard) Track(ctx context.Context, product *models.Product) {
	if g.cache == nil {
		return
	}
	if err := g.cache.InitStock(ctx, product.ID, product.InventoryCount); err != nil {
		g.logger.Error("failed to init cached stock",
			zap.String("product_id", product.ID),
			zap.Error(err))
	}
}

// Forget drops a hard-deleted product from the cache.
func (g *InventoryGuard) Forget(ctx context.Context, productID string) {
	if g.cache == nil {
		return
	}
	if err := g.cache.DeleteStock(ctx, productID); err != nil {
		g.logger.Error("failed to delete cached stock",
			zap.String("product_id", productID),
			zap.Error(err))
	}
}

// SyncToCache seeds the cache with every visible product's stock count.
// Called once at startup.
func (g *InventoryGuard) SyncToCache(ctx context.Context) error {
	if g.cache == nil {
		return nil
	}

	products, err := g.store.ListVisibleProducts(ctx)
	if err != nil {
		return err
	}
	for i := range products {
		g.Track(ctx, &products[i])
	}

	g.logger.Info("stock cache synced", zap.Int("count", len(products)))
	return nil
}
