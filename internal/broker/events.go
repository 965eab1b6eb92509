package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing marketplace events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}

// PublishProductAdded publishes a ProductAdded event
func (ep *EventPublisher) PublishProductAdded(ctx context.Context, product *models.Product) error {
	event := &models.ProductAddedEvent{
		BaseEvent: newBaseEvent(models.EventTypeProductAdded),
		ProductID: product.ID,
		Title:     product.Title,
		Price:     product.Price,
		Inventory: product.InventoryCount,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("product-%s", product.ID), event)
}

// PublishProductDeleted publishes a ProductDeleted event
func (ep *EventPublisher) PublishProductDeleted(ctx context.Context, product *models.Product) error {
	event := &models.ProductDeletedEvent{
		BaseEvent: newBaseEvent(models.EventTypeProductDeleted),
		ProductID: product.ID,
		Title:     product.Title,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("product-%s", product.ID), event)
}

// PublishProductOutOfStock publishes a ProductOutOfStock event
func (ep *EventPublisher) PublishProductOutOfStock(ctx context.Context, product *models.Product) error {
	event := &models.ProductOutOfStockEvent{
		BaseEvent: newBaseEvent(models.EventTypeProductOutOfStock),
		ProductID: product.ID,
		Title:     product.Title,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("product-%s", product.ID), event)
}

// PublishOrderPlaced publishes an OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, order *models.Order) error {
	items := make([]models.OrderItemData, 0, len(order.Products))
	for _, p := range order.Products {
		items = append(items, models.OrderItemData{
			ProductID: p.ID,
			Title:     p.Title,
			Price:     p.Price,
		})
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: newBaseEvent(models.EventTypeOrderPlaced),
		OrderID:   order.OrderID,
		Username:  order.Username,
		Amount:    order.Amount,
		Items:     items,
	}
	return ep.producer.PublishEvent(ctx, fmt.Sprintf("order-%s", order.OrderID), event)
}

// EventHandler routes incoming marketplace events to registered callbacks
type EventHandler struct {
	logger           *zap.Logger
	onOrderPlaced    func(context.Context, *models.OrderPlacedEvent) error
	onProductDrained func(context.Context, *models.ProductOutOfStockEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnOrderPlaced registers a handler for OrderPlaced events
func (eh *EventHandler) OnOrderPlaced(handler func(context.Context, *models.OrderPlacedEvent) error) {
	eh.onOrderPlaced = handler
}

// OnProductOutOfStock registers a handler for ProductOutOfStock events
func (eh *EventHandler) OnProductOutOfStock(handler func(context.Context, *models.ProductOutOfStockEvent) error) {
	eh.onProductDrained = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderPlaced:
		if eh.onOrderPlaced != nil {
			var event models.OrderPlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
			}
			return eh.onOrderPlaced(ctx, &event)
		}

	case models.EventTypeProductOutOfStock:
		if eh.onProductDrained != nil {
			var event models.ProductOutOfStockEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ProductOutOfStock event: %w", err)
			}
			return eh.onProductDrained(ctx, &event)
		}

	default:
		eh.logger.Debug("unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
