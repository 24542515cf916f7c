package gateway

import (
	"errors"
	"fmt"
)

// ErrUnavailable tags transport-level failures: network errors,
// timeouts, non-2xx responses with no parseable body. Wrapped errors
// carry the cause.
var ErrUnavailable = errors.New("gateway unavailable")

// RejectionError is a business rejection from the gateway itself: the
// request reached it and was refused, or the response lacked the url
// and token of a created payment session.
type RejectionError struct {
	Code    int
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message == "" {
		return "gateway rejected the request"
	}
	return fmt.Sprintf("gateway rejected the request (code %d): %s", e.Code, e.Message)
}

func IsRejection(err error) bool {
	var rejection *RejectionError
	return errors.As(err, &rejection)
}
