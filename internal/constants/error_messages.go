package constants

const MessageErrorFormat = "The '%s' format is invalid"

const (
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
	ErrCodeTransactionNotFound = "TRANSACTION_NOT_FOUND"
	ErrCodeGatewayUnavailable  = "GATEWAY_UNAVAILABLE"
	ErrCodeGatewayRejected     = "GATEWAY_REJECTED"
	ErrCodeInvalidSignature    = "INVALID_SIGNATURE"
	ErrCodeInvalidRequestBody  = "INVALID_REQUEST_BODY"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

const (
	ErrMsgAccountNotFound     = "account not found"
	ErrMsgTransactionNotFound = "transaction not found"
	ErrMsgGatewayUnavailable  = "payment gateway unavailable, transaction remains pending"
	ErrMsgGatewayRejected     = "payment gateway rejected the order"
	ErrMsgInvalidSignature    = "callback signature verification failed"
	ErrMsgInvalidRequestBody  = "failed to parse request body"
	ErrMsgInternalError       = "Internal server error"
)

var errorMessages = map[string]string{
	ErrCodeAccountNotFound:     ErrMsgAccountNotFound,
	ErrCodeTransactionNotFound: ErrMsgTransactionNotFound,
	ErrCodeGatewayUnavailable:  ErrMsgGatewayUnavailable,
	ErrCodeGatewayRejected:     ErrMsgGatewayRejected,
	ErrCodeInvalidSignature:    ErrMsgInvalidSignature,
	ErrCodeInvalidRequestBody:  ErrMsgInvalidRequestBody,
	ErrCodeInternalError:       ErrMsgInternalError,
}

func GetErrorMessage(code string) string {
	if msg, exists := errorMessages[code]; exists {
		return msg
	}
	return ErrMsgInternalError
}

func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeInvalidRequestBody:
		return 400
	case ErrCodeInvalidSignature:
		return 401
	case ErrCodeAccountNotFound, ErrCodeTransactionNotFound:
		return 404
	case ErrCodeGatewayRejected, ErrCodeValidationFailed:
		return 422
	case ErrCodeGatewayUnavailable:
		return 503
	default:
		return 500
	}
}
