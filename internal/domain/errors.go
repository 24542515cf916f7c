package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidOrder   = "INVALID_ORDER"
	ErrCodeBelowMinimum   = "BELOW_MINIMUM"
	ErrCodeOrderNotFound  = "ORDER_NOT_FOUND"
	ErrCodeDuplicateOrder = "DUPLICATE_ORDER"
	ErrCodeStatusConflict = "STATUS_CONFLICT"
)

func NewInvalidOrderError(reason string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidOrder,
		Message: reason,
	}
}

func NewBelowMinimumError(amount, minimum int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeBelowMinimum,
		Message: fmt.Sprintf("amount %d is below the minimum payable amount %d", amount, minimum),
	}
}

func NewOrderNotFoundError(commerceOrderID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeOrderNotFound,
		Message: fmt.Sprintf("order %s not found", commerceOrderID),
	}
}

func NewOrderNotFoundByTokenError(token string) *DomainError {
	return &DomainError{
		Code:    ErrCodeOrderNotFound,
		Message: fmt.Sprintf("no order with gateway token %s", token),
	}
}

func NewDuplicateOrderError(commerceOrderID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateOrder,
		Message: fmt.Sprintf("order %s already exists", commerceOrderID),
	}
}

func NewStatusConflictError(commerceOrderID string, from, to OrderStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeStatusConflict,
		Message: fmt.Sprintf("order %s cannot transition from %s to %s", commerceOrderID, from, to),
	}
}

// IsErrorCode reports whether err carries the given domain error code.
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
