package models

import "time"

// Product is a catalog record. A product whose InventoryCount has reached
// zero still exists in storage (historical orders reference it) but is
// hidden from catalog reads.
type Product struct {
	ID             string  `db:"id" json:"id"`
	Title          string  `db:"title" json:"title"`
	Price          float64 `db:"price" json:"price"`
	InventoryCount int     `db:"inventory_count" json:"inventory_count"`
	URI            string  `db:"uri" json:"uri"`
}

// User owns a cart: an ordered list of product ids, duplicates allowed.
// Buying N units of a product is N repeated entries.
type User struct {
	Username     string   `db:"username" json:"username"`
	Email        string   `db:"email" json:"email"`
	PasswordHash string   `db:"password_hash" json:"-"`
	Cart         []string `db:"-" json:"cart"`
}

// CartView is the resolved form of a cart: one snapshot per resolvable
// entry, in cart order. It is derived on demand and never persisted.
// TotalPrice is not deduplicated; two entries of the same product
// contribute its price twice.
type CartView struct {
	Products   []Product `json:"products"`
	TotalPrice float64   `json:"total_price"`
}

// Order is the immutable result of a completed checkout. Products are
// value copies captured at checkout time, so later catalog edits or
// deletes cannot alter a historical order.
type Order struct {
	OrderID   string    `db:"order_id" json:"order_id"`
	Username  string    `db:"username" json:"username"`
	Products  []Product `db:"-" json:"products"`
	Amount    float64   `db:"amount" json:"amount"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
