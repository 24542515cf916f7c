// Package rest holds the HTTP response envelope shared by handlers
// and middleware.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tiendazen/payment-service/internal/application"
	"github.com/tiendazen/payment-service/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	})
}

// WriteError maps application and domain errors to HTTP responses.
// Internal detail stays in the logs; the body carries only the error
// code and message.
func WriteError(w http.ResponseWriter, err error) {
	code := application.ErrCodeInternal
	message := "An internal error occurred"
	status := http.StatusInternalServerError

	var svcErr *application.ServiceError
	var domainErr *domain.DomainError

	switch {
	case errors.As(err, &svcErr):
		code = svcErr.Code
		message = svcErr.Message
		status = svcErr.HTTPStatus
	case errors.As(err, &domainErr):
		code = domainErr.Code
		message = domainErr.Message
		status = http.StatusBadRequest
	}

	WriteJSON(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}
