package application

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tiendazen/payment-service/internal/domain"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeMalformedCallback     = "MALFORMED_CALLBACK"
	ErrCodeInvalidSignature      = "INVALID_SIGNATURE"
	ErrCodeGatewayUnavailable    = "GATEWAY_UNAVAILABLE"
	ErrCodeGatewayRejected       = "GATEWAY_REJECTED"
	ErrCodeReconciliationFailure = "RECONCILIATION_FAILURE"
	ErrCodeInternal              = "INTERNAL_ERROR"
	ErrCodeInvalidInput          = "INVALID_INPUT"
)

func NewMalformedCallbackError(reason string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeMalformedCallback,
		Message:    reason,
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewInvalidSignatureError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidSignature,
		Message:    "callback signature verification failed",
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewGatewayUnavailableError marks a transient transport failure. It is
// safe for the caller to retry; during confirmation it must never be
// read as "payment failed".
func NewGatewayUnavailableError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeGatewayUnavailable,
		Message:    "payment gateway is unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewGatewayRejectedError marks a business rejection by the gateway.
// Retrying the same request will not help.
func NewGatewayRejectedError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeGatewayRejected,
		Message:    "payment gateway rejected the request",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewReconciliationFailureError marks the highest-severity outcome: the
// gateway confirmed the payment but the order write failed. It needs
// operator attention, not a user-facing payment failure.
func NewReconciliationFailureError(commerceOrderID string, err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeReconciliationFailure,
		Message:    fmt.Sprintf("payment confirmed but order %s could not be persisted", commerceOrderID),
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    "Invalid input",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// FromDomainError lifts a domain error into a ServiceError with the
// matching HTTP status, preserving the domain code.
func FromDomainError(err error) *ServiceError {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		return NewInternalError(err)
	}

	status := http.StatusBadRequest
	switch domainErr.Code {
	case domain.ErrCodeOrderNotFound:
		status = http.StatusNotFound
	case domain.ErrCodeStatusConflict:
		status = http.StatusConflict
	case domain.ErrCodeBelowMinimum:
		status = http.StatusUnprocessableEntity
	}

	return &ServiceError{
		Code:       domainErr.Code,
		Message:    domainErr.Message,
		HTTPStatus: status,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

// IsErrorCode reports whether err carries the given service error code.
func IsErrorCode(err error, code string) bool {
	svcErr, ok := IsServiceError(err)
	return ok && svcErr.Code == code
}
