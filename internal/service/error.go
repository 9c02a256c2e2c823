package service

import "errors"

var (
	ErrTransactionNotFound  = errors.New("TRANSACTION_NOT_FOUND")
	ErrAccountNotFound      = errors.New("ACCOUNT_NOT_FOUND")
	ErrCorrelationNotFound  = errors.New("CORRELATION_NOT_FOUND")
	ErrCorrelationAmbiguous = errors.New("CORRELATION_AMBIGUOUS")
	ErrSignatureInvalid     = errors.New("SIGNATURE_INVALID")
	ErrDatabase             = errors.New("DATABASE_ERROR")
)

type Error struct {
	Code  string
	Cause error
}

func NewServiceError(code string, cause error) error {
	return Error{Code: code, Cause: cause}
}

func (e Error) Error() string {
	return e.Cause.Error()
}

func (e Error) Unwrap() error {
	return e.Cause
}
