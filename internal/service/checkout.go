package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutService converts a cart into an immutable order while adjusting
// inventory. The whole transition runs under the user's cart lock; per-
// product atomicity comes from the inventory guard. The storage layer has
// no multi-record transactions, so an abort mid-decrement is compensated
// by replaying the applied decrements in reverse.
type CheckoutService struct {
	users     UserStore
	cart      *CartService
	catalog   *CatalogService
	ledger    *OrderLedger
	publisher *broker.EventPublisher
	logger    *zap.Logger
}

// NewCheckoutService creates a new checkout service. publisher may be nil
// when no broker is configured.
func NewCheckoutService(
	users UserStore,
	cart *CartService,
	catalog *CatalogService,
	ledger *OrderLedger,
	publisher *broker.EventPublisher,
) *CheckoutService {
	return &CheckoutService{
		users:     users,
		cart:      cart,
		catalog:   catalog,
		ledger:    ledger,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Checkout runs the transaction: precondition check, one inventory
// decrement per resolvable cart entry (duplicates included), order
// materialization from the pre-decrement view, cart reset. Returns the
// created order and the distinct affected products with their
// post-decrement counts, in first-occurrence order.
func (s *CheckoutService) Checkout(ctx context.Context, username string) (*models.Order, []models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	start := time.Now()
	defer func() {
		util.CheckoutLatency.Observe(time.Since(start).Seconds())
	}()

	var (
		order    *models.Order
		affected []models.Product
	)

	err := s.cart.withUserLock(username, func() error {
		user, err := s.users.GetUser(ctx, username)
		if err != nil {
			if errors.Is(err, models.ErrUserNotFound) {
				util.CheckoutsFailedTotal.WithLabelValues("user_not_found").Inc()
			}
			return err
		}

		// Pre-decrement snapshot: prices and products as the buyer saw
		// them. Dangling entries drop out here and are neither charged
		// nor decremented.
		view, err := s.cart.resolveCart(ctx, user.Cart)
		if err != nil {
			return err
		}
		if len(view.Products) == 0 {
			util.CheckoutsFailedTotal.WithLabelValues("empty_cart").Inc()
			return models.ErrEmptyCart
		}

		affected, err = s.commitInventory(ctx, view.Products)
		if err != nil {
			return err
		}

		order = &models.Order{
			OrderID:  uuid.New().String(),
			Username: username,
			Products: view.Products,
			Amount:   view.TotalPrice,
		}
		if err := s.ledger.Append(ctx, order); err != nil {
			// Ledger append is not expected to fail; surface it as fatal
			// for the request rather than continuing without an order.
			util.CheckoutsFailedTotal.WithLabelValues("ledger_append").Inc()
			return fmt.Errorf("failed to append order: %w", err)
		}

		if err := s.cart.clearCart(ctx, username); err != nil {
			util.CheckoutsFailedTotal.WithLabelValues("cart_reset").Inc()
			return fmt.Errorf("failed to reset cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	util.CheckoutsCompletedTotal.Inc()
	s.logger.Info("checkout completed",
		zap.String("username", username),
		zap.String("order_id", order.OrderID),
		zap.Float64("amount", order.Amount),
		zap.Int("items", len(order.Products)))

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
			s.logger.Error("failed to publish OrderPlaced event", zap.Error(err))
		}
		for i := range affected {
			if affected[i].InventoryCount == 0 {
				if err := s.publisher.PublishProductOutOfStock(ctx, &affected[i]); err != nil {
					s.logger.Error("failed to publish ProductOutOfStock event", zap.Error(err))
				}
			}
		}
	}

	return order, affected, nil
}

// commitInventory decrements one unit per line. On failure it aborts the
// remaining decrements, rolls back the ones already applied in reverse
// order, and reports which product failed.
func (s *CheckoutService) commitInventory(ctx context.Context, lines []models.Product) ([]models.Product, error) {
	applied := make([]string, 0, len(lines))
	latest := make(map[string]models.Product, len(lines))
	order := make([]string, 0, len(lines))

	for _, line := range lines {
		product, err := s.catalog.DecrementOne(ctx, line.ID)
		if err != nil {
			s.rollbackDecrements(ctx, applied)
			util.CheckoutsFailedTotal.WithLabelValues("out_of_stock").Inc()
			return nil, fmt.Errorf("product %q (%s): %w", line.Title, line.ID, err)
		}

		if _, seen := latest[line.ID]; !seen {
			order = append(order, line.ID)
		}
		latest[line.ID] = *product
		applied = append(applied, line.ID)
	}

	affected := make([]models.Product, 0, len(order))
	for _, id := range order {
		affected = append(affected, latest[id])
	}
	return affected, nil
}

// rollbackDecrements compensates an aborted checkout by restoring every
// applied decrement, newest first.
func (s *CheckoutService) rollbackDecrements(ctx context.Context, applied []string) {
	for i := len(applied) - 1; i >= 0; i-- {
		if err := s.catalog.RestoreOne(ctx, applied[i]); err != nil {
			s.logger.Error("failed to roll back inventory decrement",
				zap.String("product_id", applied[i]),
				zap.Error(err))
		}
	}
}
