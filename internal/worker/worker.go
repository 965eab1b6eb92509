package worker

import (
	"context"

	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// EventsWorker consumes the marketplace event stream. It keeps an audit
// trail of placed orders and flags products drained to zero so operators
// can restock them.
type EventsWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewEventsWorker creates a new events worker
func NewEventsWorker(consumer *broker.Consumer) *EventsWorker {
	logger := util.GetLogger()

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(func(ctx context.Context, event *models.OrderPlacedEvent) error {
		logger.Info("order placed",
			zap.String("order_id", event.OrderID),
			zap.String("username", event.Username),
			zap.Float64("amount", event.Amount),
			zap.Int("items", len(event.Items)))
		return nil
	})
	eventHandler.OnProductOutOfStock(func(ctx context.Context, event *models.ProductOutOfStockEvent) error {
		logger.Warn("product out of stock, restock needed",
			zap.String("product_id", event.ProductID),
			zap.String("title", event.Title))
		return nil
	})

	return &EventsWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       logger,
	}
}

// Start starts the worker
func (w *EventsWorker) Start(ctx context.Context) error {
	w.logger.Info("starting events worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *EventsWorker) Stop() error {
	w.logger.Info("stopping events worker")
	return w.consumer.Close()
}
