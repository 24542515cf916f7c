// Package handlers exposes the payment pipeline over HTTP: payment
// creation, the gateway's server-to-server confirmation callback and
// the browser return leg.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"
	"github.com/tiendazen/payment-service/internal/application/services"
)

type Handlers struct {
	checkout     *services.CheckoutService
	confirmation *services.ConfirmationService
	storeBaseURL string
	validate     *validator.Validate
	logger       *slog.Logger
}

func NewHandlers(
	checkout *services.CheckoutService,
	confirmation *services.ConfirmationService,
	storeBaseURL string,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		checkout:     checkout,
		confirmation: confirmation,
		storeBaseURL: storeBaseURL,
		validate:     validator.New(),
		logger:       logger,
	}
}

func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /payment/create", h.HandleCreate)
	mux.HandleFunc("POST /payment/confirm", h.HandleConfirm)
	mux.HandleFunc("GET /payment/confirm", h.HandleConfirm)
	mux.HandleFunc("POST /payment/return", h.HandleReturn)
	mux.HandleFunc("GET /payment/return", h.HandleReturn)
}

// callbackFields flattens query or form parameters into the single-
// valued field map used for signature verification.
func callbackFields(r *http.Request) map[string]string {
	if err := r.ParseForm(); err != nil {
		return map[string]string{}
	}

	fields := make(map[string]string, len(r.Form))
	for name, values := range r.Form {
		if len(values) > 0 {
			fields[name] = values[0]
		}
	}
	return fields
}
