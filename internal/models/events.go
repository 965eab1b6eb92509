package models

import "time"

// Event types
const (
	EventTypeProductAdded      = "PRODUCT_ADDED"
	EventTypeProductDeleted    = "PRODUCT_DELETED"
	EventTypeProductOutOfStock = "PRODUCT_OUT_OF_STOCK"
	EventTypeOrderPlaced       = "ORDER_PLACED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductAddedEvent published when a product enters the catalog
type ProductAddedEvent struct {
	BaseEvent
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Inventory int     `json:"inventory_count"`
}

// ProductDeletedEvent published when a product is hard-removed
type ProductDeletedEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
}

// ProductOutOfStockEvent published when a checkout drains a product to zero
type ProductOutOfStockEvent struct {
	BaseEvent
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
}

// OrderPlacedEvent published after a successful checkout
type OrderPlacedEvent struct {
	BaseEvent
	OrderID  string          `json:"order_id"`
	Username string          `json:"username"`
	Amount   float64         `json:"amount"`
	Items    []OrderItemData `json:"items"`
}

// OrderItemData represents one purchased line in an event payload
type OrderItemData struct {
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
}
