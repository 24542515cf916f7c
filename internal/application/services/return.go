package services

import (
	"strconv"

	"github.com/tiendazen/payment-service/internal/application"
)

// Return outcome flags appended to the storefront redirect.
const (
	ReturnSuccess = "success"
	ReturnError   = "error"
)

// ReturnOutcome maps the gateway status carried on the browser return
// leg to a coarse UX flag. The flag is cosmetic: the confirmation
// callback is the only authority for payment state.
func ReturnOutcome(statusField string) string {
	status, err := strconv.Atoi(statusField)
	if err != nil {
		return ReturnError
	}
	if status == application.GatewayStatusPaid {
		return ReturnSuccess
	}
	return ReturnError
}
