package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/tiendazen/payment-service/internal/application"
	"github.com/tiendazen/payment-service/internal/application/services"
	"github.com/tiendazen/payment-service/internal/domain"
	"github.com/tiendazen/payment-service/internal/interfaces/rest"
)

type CreateItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Name      string `json:"name" validate:"required"`
	UnitPrice int64  `json:"unitPrice" validate:"gte=0"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

type CreateRequest struct {
	Amount  int64               `json:"amount" validate:"required,gt=0"`
	Items   []CreateItemRequest `json:"items" validate:"required,min=1,dive"`
	Email   string              `json:"email" validate:"omitempty,email"`
	OwnerID *string             `json:"ownerId"`
}

type CreateData struct {
	URL           string `json:"url"`
	Token         string `json:"token"`
	CommerceOrder string `json:"commerceOrder"`
}

// HandleCreate opens a payment session for a checkout draft and
// returns the gateway redirect URL.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		rest.WriteError(w, application.NewInvalidInputError(err))
		return
	}

	items := make([]domain.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	result, err := h.checkout.CreatePayment(r.Context(), services.CreatePaymentCommand{
		Amount:  req.Amount,
		Items:   items,
		Email:   req.Email,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		rest.WriteError(w, err)
		return
	}

	rest.WriteData(w, http.StatusOK, CreateData{
		URL:           result.RedirectURL,
		Token:         result.Token,
		CommerceOrder: result.CommerceOrderID,
	})
}
