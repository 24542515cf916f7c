package postgres

import (
	"time"
)

// OrderModel mirrors the orders table.
type OrderModel struct {
	CommerceOrderID string
	GatewayToken    *string
	TotalAmount     int64
	Status          string
	OwnerID         *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItemModel mirrors the order_items table. Position preserves the
// line item order from checkout.
type OrderItemModel struct {
	CommerceOrderID string
	Position        int
	ProductID       string
	Name            string
	UnitPrice       int64
	Quantity        int64
}
