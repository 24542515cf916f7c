package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/tiendazen/payment-service/internal/application/services"
)

// HandleReturn receives the browser redirect leg and forwards the user
// to the storefront with a coarse outcome flag. It verifies nothing
// and mutates nothing; the confirmation callback is the authority.
func (h *Handlers) HandleReturn(w http.ResponseWriter, r *http.Request) {
	fields := callbackFields(r)

	flag := services.ReturnOutcome(fields["status"])

	query := url.Values{}
	query.Set("payment", flag)
	query.Set("order", fields["commerceOrder"])

	target := strings.TrimRight(h.storeBaseURL, "/") + "/cart?" + query.Encode()
	http.Redirect(w, r, target, http.StatusFound)
}
