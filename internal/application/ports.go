package application

import (
	"context"

	"github.com/tiendazen/payment-service/internal/domain"
)

// GatewayClient is the port for the external hosted payment gateway.
type GatewayClient interface {
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error)
	GetStatus(ctx context.Context, token string) (*PaymentStatusResult, error)
}

// OrderStore is the port for order persistence. Transition must
// serialize competing writers on the same order: at most one caller
// observes the pending row, later callers observe the idempotent
// no-op or the conflict path.
type OrderStore interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByCommerceOrderID(ctx context.Context, commerceOrderID string) (*domain.Order, error)
	FindByToken(ctx context.Context, token string) (*domain.Order, error)
	SetGatewayToken(ctx context.Context, commerceOrderID, token string) error
	Transition(ctx context.Context, commerceOrderID string, target domain.OrderStatus) (*domain.Order, error)
}

// CreatePaymentRequest is the signed field set submitted to the
// gateway when opening a payment session.
type CreatePaymentRequest struct {
	CommerceOrderID string
	Subject         string
	Amount          int64
	Email           string
	Optional        string
}

type CreatePaymentResult struct {
	RedirectURL     string
	Token           string
	GatewayOrderRef int64
	Simulated       bool
}

// PaymentStatusResult is the tagged result of a status poll, validated
// at the gateway boundary before any field access.
type PaymentStatusResult struct {
	Status        int
	CommerceOrder string
	Optional      string
	Simulated     bool
}

// Gateway payment status sentinels.
const (
	GatewayStatusPending  = 1
	GatewayStatusPaid     = 2
	GatewayStatusRejected = 3
	GatewayStatusCanceled = 4
)
