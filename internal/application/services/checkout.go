package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tiendazen/payment-service/internal/application"
	"github.com/tiendazen/payment-service/internal/config"
	"github.com/tiendazen/payment-service/internal/domain"
	"github.com/tiendazen/payment-service/internal/infrastructure/gateway"
)

type CheckoutService struct {
	orders   application.OrderStore
	gateway  application.GatewayClient
	commerce config.CommerceConfig
	logger   *slog.Logger
}

func NewCheckoutService(
	orders application.OrderStore,
	gatewayClient application.GatewayClient,
	commerce config.CommerceConfig,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		orders:   orders,
		gateway:  gatewayClient,
		commerce: commerce,
		logger:   logger,
	}
}

type CreatePaymentCommand struct {
	Amount  int64
	Items   []domain.LineItem
	Email   string
	OwnerID *string
}

type CheckoutResult struct {
	CommerceOrderID string
	RedirectURL     string
	Token           string
	Simulated       bool
}

// CreatePayment validates the draft, persists it locally as pending
// and opens a payment session with the gateway. The local pending row
// is written before any gateway call, so the confirmation leg never
// depends on data echoed back by the gateway.
func (s *CheckoutService) CreatePayment(ctx context.Context, cmd CreatePaymentCommand) (*CheckoutResult, error) {
	order, err := domain.NewOrder(s.commerce.OrderPrefix, cmd.Amount, cmd.Items, cmd.OwnerID, s.commerce.MinAmount)
	if err != nil {
		return nil, application.FromDomainError(err)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, application.NewInternalError(err)
	}

	optional, err := application.OptionalPayload{
		OwnerID: order.OwnerID,
		Items:   order.LineItems,
	}.Encode()
	if err != nil {
		return nil, application.NewInternalError(err)
	}

	result, err := s.gateway.CreatePayment(ctx, application.CreatePaymentRequest{
		CommerceOrderID: order.CommerceOrderID,
		Subject:         fmt.Sprintf("Order %s", order.CommerceOrderID),
		Amount:          order.TotalAmount,
		Email:           cmd.Email,
		Optional:        optional,
	})
	if err != nil {
		// The pending row stays behind; orders are never deleted.
		return nil, mapGatewayError(err)
	}

	if err := s.orders.SetGatewayToken(ctx, order.CommerceOrderID, result.Token); err != nil {
		// The session exists and the callback still carries the
		// commerce order id, so correlation survives a lost token.
		s.logger.Error("failed to store gateway token",
			"commerce_order", order.CommerceOrderID,
			"error", err,
		)
	}

	s.logger.Info("payment session created",
		"commerce_order", order.CommerceOrderID,
		"amount", order.TotalAmount,
		"simulated", result.Simulated,
	)

	return &CheckoutResult{
		CommerceOrderID: order.CommerceOrderID,
		RedirectURL:     result.RedirectURL,
		Token:           result.Token,
		Simulated:       result.Simulated,
	}, nil
}

func mapGatewayError(err error) *application.ServiceError {
	if errors.Is(err, gateway.ErrUnavailable) {
		return application.NewGatewayUnavailableError(err)
	}
	if gateway.IsRejection(err) {
		return application.NewGatewayRejectedError(err)
	}
	return application.NewInternalError(err)
}
