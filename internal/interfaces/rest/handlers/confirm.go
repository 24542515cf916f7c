package handlers

import (
	"net/http"

	"github.com/tiendazen/payment-service/internal/application"
	"github.com/tiendazen/payment-service/internal/application/services"
	"github.com/tiendazen/payment-service/internal/interfaces/rest"
)

// ConfirmResponse acknowledges a confirmation callback to the gateway.
type ConfirmResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// HandleConfirm processes the gateway's server-to-server confirmation.
// Only malformed or badly signed callbacks are rejected with 400;
// every other outcome responds 200 so the gateway stops retrying, even
// when the order write failed and an operator has to reconcile.
func (h *Handlers) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	fields := callbackFields(r)

	result, err := h.confirmation.Confirm(r.Context(), services.ConfirmationCallback{
		Token:         fields["token"],
		CommerceOrder: fields["commerceOrder"],
		Fields:        fields,
	})
	if err != nil {
		if application.IsErrorCode(err, application.ErrCodeMalformedCallback) ||
			application.IsErrorCode(err, application.ErrCodeInvalidSignature) {
			rest.WriteError(w, err)
			return
		}

		if application.IsErrorCode(err, application.ErrCodeReconciliationFailure) {
			rest.WriteJSON(w, http.StatusOK, ConfirmResponse{
				Success: false,
				Message: "payment confirmed, order reconciliation pending",
				Status:  "pending",
			})
			return
		}

		// Gateway unreachable or another transient fault: acknowledge
		// receipt, the order stays pending for the next callback.
		rest.WriteJSON(w, http.StatusOK, ConfirmResponse{
			Success: false,
			Message: "confirmation could not be processed",
			Status:  "pending",
		})
		return
	}

	if !result.Completed {
		rest.WriteJSON(w, http.StatusOK, ConfirmResponse{
			Success: true,
			Message: "payment not completed",
			Status:  string(result.Status),
		})
		return
	}

	rest.WriteJSON(w, http.StatusOK, ConfirmResponse{
		Success: true,
		Message: "payment confirmed",
		Status:  string(result.Status),
	})
}
