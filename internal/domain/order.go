// Package domain defines the commerce order model and its lifecycle rules.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the current state of an order in its lifecycle.
type OrderStatus string

const (
	StatusPending OrderStatus = "pending"
	StatusPaid    OrderStatus = "paid"
	StatusFailed  OrderStatus = "failed"
)

// MinPayableAmount is the default floor for an order total, in whole
// currency units. The configured value takes precedence; this constant
// only backs tests and the config default.
const MinPayableAmount int64 = 350

// LineItem is a snapshot of a purchased product at checkout time.
type LineItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int64  `json:"quantity"`
}

// Order is the merchant-side record of a payment attempt. The
// CommerceOrderID is assigned exactly once, before any gateway call,
// and is the external correlation key for the whole pipeline. The
// GatewayToken is the gateway's own handle, known only after the
// payment session has been created.
type Order struct {
	CommerceOrderID string
	GatewayToken    *string
	TotalAmount     int64
	LineItems       []LineItem
	Status          OrderStatus
	OwnerID         *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder validates a draft and assigns a fresh commerce order id.
// The total must match the line item sum exactly; the gateway is a
// payment authority, never a pricing authority.
func NewOrder(prefix string, totalAmount int64, items []LineItem, ownerID *string, minAmount int64) (*Order, error) {
	if len(items) == 0 {
		return nil, NewInvalidOrderError("order has no line items")
	}

	var sum int64
	for _, item := range items {
		if item.UnitPrice < 0 || item.Quantity <= 0 {
			return nil, NewInvalidOrderError(fmt.Sprintf("line item %q has invalid price or quantity", item.ProductID))
		}
		sum += item.UnitPrice * item.Quantity
	}
	if sum != totalAmount {
		return nil, NewInvalidOrderError(fmt.Sprintf("total amount %d does not match line item sum %d", totalAmount, sum))
	}

	if totalAmount < minAmount {
		return nil, NewBelowMinimumError(totalAmount, minAmount)
	}

	now := time.Now().UTC()
	return &Order{
		CommerceOrderID: NewCommerceOrderID(prefix),
		TotalAmount:     totalAmount,
		LineItems:       items,
		Status:          StatusPending,
		OwnerID:         ownerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// NewCommerceOrderID generates a `{prefix}_{unixMillis}_{token}` order id.
func NewCommerceOrderID(prefix string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), token)
}

// CanTransitionTo validates whether the order can move to the target
// status. It returns nil if the transition is allowed, including the
// idempotent case where the order is already in the target terminal
// state.
//
// Valid transitions are:
//   - pending → paid, failed
//   - paid → paid (no-op), failed → failed (no-op)
//
// Crossing terminal states (paid → failed or the reverse) is a
// conflict and must never be applied.
func (o *Order) CanTransitionTo(target OrderStatus) error {
	if o.Status == target {
		return nil
	}
	if o.Status == StatusPending && (target == StatusPaid || target == StatusFailed) {
		return nil
	}
	return NewStatusConflictError(o.CommerceOrderID, o.Status, target)
}

func (o *Order) IsTerminal() bool {
	switch o.Status {
	case StatusPaid, StatusFailed:
		return true
	default:
		return false
	}
}
