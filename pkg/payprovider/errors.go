package payprovider

import (
	"errors"
	"fmt"
)

const (
	ErrCodeTimeout       = "TIMEOUT"
	ErrCodeServerError   = "SERVER_ERROR"
	ErrCodeOrderNotFound = "ORDER_NOT_FOUND"
)

var (
	ErrTimeout       = errors.New(ErrCodeTimeout)
	ErrServerError   = errors.New(ErrCodeServerError)
	ErrOrderNotFound = errors.New(ErrCodeOrderNotFound)
)

// Provider error codes observed in failure responses.
const (
	codeOrderNotFound   = 1018
	codeInvalidAmount   = 1008
	codeInvalidCurrency = 1007
	codeMerchantBlocked = 1012
)

// RejectionError carries the provider's business rejection code from order
// creation. It is terminal for that attempt and never retried.
type RejectionError struct {
	Code    int
	Message string
}

func (e RejectionError) Error() string {
	return fmt.Sprintf("gateway rejected request: code=%d message=%s", e.Code, e.Message)
}

func mapFailureCode(code int, message string) error {
	if code == codeOrderNotFound {
		return ErrOrderNotFound
	}

	if message == "" {
		message = rejectionMessage(code)
	}

	return RejectionError{Code: code, Message: message}
}

// rejectionMessage fills in for responses that carry a code but no
// error_message text.
func rejectionMessage(code int) string {
	switch code {
	case codeInvalidAmount:
		return "order amount is invalid"
	case codeInvalidCurrency:
		return "order currency is not supported"
	case codeMerchantBlocked:
		return "merchant is blocked"
	default:
		return "request rejected by provider"
	}
}
