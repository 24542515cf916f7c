package gateway

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/tiendazen/payment-service/internal/application"
	"github.com/tiendazen/payment-service/internal/config"
)

// SimulatedClient stands in for the gateway when no credentials are
// configured. Every created payment succeeds deterministically and
// every status poll reports paid, with no network call. Results carry
// Simulated=true so downstream code can never confuse a simulated
// confirmation with a real one.
type SimulatedClient struct {
	returnURL string
	logger    *slog.Logger
}

func NewSimulatedClient(commerce config.CommerceConfig, logger *slog.Logger) application.GatewayClient {
	return &SimulatedClient{
		returnURL: strings.TrimRight(commerce.PublicBaseURL, "/") + "/payment/return",
		logger:    logger,
	}
}

func (c *SimulatedClient) CreatePayment(ctx context.Context, req application.CreatePaymentRequest) (*application.CreatePaymentResult, error) {
	token := "sim_" + strings.ReplaceAll(uuid.NewString(), "-", "")

	c.logger.Warn("simulated gateway: payment created without live credentials",
		"commerce_order", req.CommerceOrderID,
		"amount", req.Amount,
		"token", token,
	)

	return &application.CreatePaymentResult{
		RedirectURL: c.returnURL + "?token=" + token + "&commerceOrder=" + req.CommerceOrderID,
		Token:       token,
		Simulated:   true,
	}, nil
}

func (c *SimulatedClient) GetStatus(ctx context.Context, token string) (*application.PaymentStatusResult, error) {
	c.logger.Warn("simulated gateway: reporting payment as paid", "token", token)

	return &application.PaymentStatusResult{
		Status:    application.GatewayStatusPaid,
		Simulated: true,
	}, nil
}
