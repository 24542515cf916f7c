package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/tiendazen/payment-service/internal/application"
	"github.com/tiendazen/payment-service/internal/domain"
	"github.com/tiendazen/payment-service/internal/sign"
)

// ConfirmationService runs the server-to-server confirmation state
// machine: Received → SignatureVerified → StatusPolled → Reconciled.
// It is the only writer of paid/failed order status.
type ConfirmationService struct {
	orders  application.OrderStore
	gateway application.GatewayClient
	secret  string
	logger  *slog.Logger
}

func NewConfirmationService(
	orders application.OrderStore,
	gatewayClient application.GatewayClient,
	secret string,
	logger *slog.Logger,
) *ConfirmationService {
	return &ConfirmationService{
		orders:  orders,
		gateway: gatewayClient,
		secret:  secret,
		logger:  logger,
	}
}

// ConfirmationCallback carries the raw inbound callback fields.
// Fields holds every parameter as received, including the signature
// when present, so verification covers exactly what the gateway sent.
type ConfirmationCallback struct {
	Token         string
	CommerceOrder string
	Fields        map[string]string
}

type ConfirmationResult struct {
	CommerceOrderID string
	Status          domain.OrderStatus
	Completed       bool
	GatewayStatus   int
	Simulated       bool
}

// Confirm verifies the callback, polls the gateway for the payment
// status and reconciles the order. A non-paid gateway status is not an
// error: the order stays pending and remains eligible for a later
// callback retry.
func (s *ConfirmationService) Confirm(ctx context.Context, cb ConfirmationCallback) (*ConfirmationResult, error) {
	if cb.Token == "" {
		return nil, application.NewMalformedCallbackError("callback is missing token")
	}
	if cb.CommerceOrder == "" {
		return nil, application.NewMalformedCallbackError("callback is missing commerceOrder")
	}

	// Callback variants without a signature field are accepted; only a
	// present-but-wrong signature halts processing.
	if provided, ok := cb.Fields[sign.Field]; ok {
		if !sign.Verify(cb.Fields, provided, s.secret) {
			s.logger.Warn("rejected callback with invalid signature",
				"commerce_order", cb.CommerceOrder,
			)
			return nil, application.NewInvalidSignatureError()
		}
	}

	status, err := s.gateway.GetStatus(ctx, cb.Token)
	if err != nil {
		// Transient gateway failure: the order stays pending and the
		// gateway's own retry policy will call back again. This must
		// never be read as a failed payment.
		return nil, mapGatewayError(err)
	}

	// The token and the commerce order must belong to the same payment
	// session. The callback fields are unauthenticated, so only the
	// order the gateway itself names for this token may be reconciled.
	if status.CommerceOrder != "" && status.CommerceOrder != cb.CommerceOrder {
		s.logger.Warn("rejected callback naming a different order than the payment session",
			"commerce_order", cb.CommerceOrder,
			"session_order", status.CommerceOrder,
		)
		return nil, application.NewMalformedCallbackError("commerceOrder does not match the payment session")
	}

	if status.Status != application.GatewayStatusPaid {
		s.logger.Info("payment not completed",
			"commerce_order", cb.CommerceOrder,
			"gateway_status", status.Status,
			"simulated", status.Simulated,
		)
		return &ConfirmationResult{
			CommerceOrderID: cb.CommerceOrder,
			Status:          domain.StatusPending,
			Completed:       false,
			GatewayStatus:   status.Status,
			Simulated:       status.Simulated,
		}, nil
	}

	order, err := s.orders.Transition(ctx, cb.CommerceOrder, domain.StatusPaid)
	if err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeOrderNotFound) {
			order, err = s.recoverOrder(ctx, cb, status)
		}
		if err != nil {
			// The payment is confirmed; failing to record it is a
			// reconciliation gap, not a payment failure.
			s.logger.Error("payment confirmed but order write failed",
				"commerce_order", cb.CommerceOrder,
				"error", err,
			)
			return nil, application.NewReconciliationFailureError(cb.CommerceOrder, err)
		}
	}

	s.logger.Info("order reconciled as paid",
		"commerce_order", order.CommerceOrderID,
		"amount", order.TotalAmount,
		"simulated", status.Simulated,
	)

	return &ConfirmationResult{
		CommerceOrderID: order.CommerceOrderID,
		Status:          order.Status,
		Completed:       true,
		GatewayStatus:   status.Status,
		Simulated:       status.Simulated,
	}, nil
}

// recoverOrder rebuilds an order from the payload echoed through the
// gateway's optional field. It only runs when a paid confirmation
// arrives for an order that was never persisted locally, which should
// not happen but must not lose a confirmed payment.
func (s *ConfirmationService) recoverOrder(ctx context.Context, cb ConfirmationCallback, status *application.PaymentStatusResult) (*domain.Order, error) {
	payload, err := application.DecodeOptionalPayload(status.Optional)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, item := range payload.Items {
		total += item.UnitPrice * item.Quantity
	}

	now := time.Now().UTC()
	token := cb.Token
	order := &domain.Order{
		CommerceOrderID: cb.CommerceOrder,
		GatewayToken:    &token,
		TotalAmount:     total,
		LineItems:       payload.Items,
		Status:          domain.StatusPaid,
		OwnerID:         payload.OwnerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if domain.IsErrorCode(err, domain.ErrCodeDuplicateOrder) {
			// Lost the race against a concurrent callback that already
			// persisted this order; converge on the stored row instead
			// of raising a false reconciliation alert.
			return s.orders.Transition(ctx, cb.CommerceOrder, domain.StatusPaid)
		}
		return nil, err
	}

	s.logger.Warn("order recovered from gateway optional payload",
		"commerce_order", order.CommerceOrderID,
		"amount", order.TotalAmount,
	)
	return order, nil
}
