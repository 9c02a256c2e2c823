package payprovider

import (
	"context"
	"time"
)

type Outcome string

const (
	OutcomeSuccess           Outcome = "SUCCESS"
	OutcomeRejected          Outcome = "REJECTED"
	OutcomeRefunded          Outcome = "REFUNDED"
	OutcomePartiallyRefunded Outcome = "PARTIALLY_REFUNDED"
	OutcomePendingAuth       Outcome = "PENDING_AUTH"
	OutcomeUnknown           Outcome = "UNKNOWN"
)

// ConfirmationEvent is the normalized confirmation shape. Both the status
// poll and the webhook callback produce it, so everything downstream of the
// adapter handles one structure regardless of which path delivered it.
type ConfirmationEvent struct {
	ProviderOrderID string
	AlternateID     string
	Outcome         Outcome
	SettledAmount   int64
	RawPayload      map[string]string
}

type CreateOrderRequest struct {
	OrderRef    string
	Amount      int64
	Currency    string
	Description string
	CallbackURL string
	ResponseURL string
}

type CreateOrderResponse struct {
	ProviderOrderID string
	CheckoutURL     string
}

type Gateway interface {
	CreateOrder(ctx context.Context, request CreateOrderRequest) (CreateOrderResponse, error)
	GetStatus(ctx context.Context, orderRef string) (ConfirmationEvent, error)
	VerifySignature(payload map[string]string) bool
	ParseCallback(raw []byte) (ConfirmationEvent, error)
}

type Config struct {
	Enable      bool          `mapstructure:"enable"`
	BaseURL     string        `mapstructure:"base_url"`
	MerchantID  string        `mapstructure:"merchant_id"`
	SecretKey   string        `mapstructure:"secret_key"`
	Currency    string        `mapstructure:"currency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	CallbackURL string        `mapstructure:"callback_url"`
	ResponseURL string        `mapstructure:"response_url"`
}
