package payprovider

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/BekaChkhiro/homevend-server-sub000/pkg/httpclient"
)

const (
	CheckoutEndpoint = "/api/checkout/url"
	StatusEndpoint   = "/api/status/order_id"
)

const (
	responseStatusSuccess = "success"
	responseStatusFailure = "failure"
)

// Hosted-checkout order statuses the provider reports.
const (
	orderStatusCreated    = "created"
	orderStatusProcessing = "processing"
	orderStatusApproved   = "approved"
	orderStatusDeclined   = "declined"
	orderStatusExpired    = "expired"
	orderStatusReversed   = "reversed"
)

type flittGateway struct {
	config Config
	client httpclient.HTTPClient
}

func NewFlittGateway(cfg Config, client httpclient.HTTPClient) Gateway {
	return &flittGateway{config: cfg, client: client}
}

type requestEnvelope struct {
	Request map[string]string `json:"request"`
}

type responseEnvelope struct {
	Response map[string]any `json:"response"`
}

func (g *flittGateway) CreateOrder(ctx context.Context, request CreateOrderRequest) (CreateOrderResponse, error) {
	currency := request.Currency
	if currency == "" {
		currency = g.config.Currency
	}

	payload := map[string]string{
		"order_id":            request.OrderRef,
		"merchant_id":         g.config.MerchantID,
		"order_desc":          request.Description,
		"amount":              strconv.FormatInt(request.Amount, 10),
		"currency":            currency,
		"server_callback_url": request.CallbackURL,
		"response_url":        request.ResponseURL,
	}
	payload["signature"] = computeSignature(g.config.SecretKey, payload)

	fields, err := g.post(ctx, CheckoutEndpoint, payload)
	if err != nil {
		return CreateOrderResponse{}, err
	}

	if fields["response_status"] == responseStatusFailure {
		return CreateOrderResponse{}, failureError(fields)
	}

	return CreateOrderResponse{
		ProviderOrderID: fields["payment_id"],
		CheckoutURL:     fields["checkout_url"],
	}, nil
}

func (g *flittGateway) GetStatus(ctx context.Context, orderRef string) (ConfirmationEvent, error) {
	payload := map[string]string{
		"order_id":    orderRef,
		"merchant_id": g.config.MerchantID,
	}
	payload["signature"] = computeSignature(g.config.SecretKey, payload)

	fields, err := g.post(ctx, StatusEndpoint, payload)
	if err != nil {
		return ConfirmationEvent{}, err
	}

	if fields["response_status"] == responseStatusFailure {
		return ConfirmationEvent{}, failureError(fields)
	}

	return normalizeEvent(fields), nil
}

// VerifySignature recomputes the payload signature and compares it against
// the one the provider sent. It returns false on any mismatch or malformed
// input, it never fails.
func (g *flittGateway) VerifySignature(payload map[string]string) bool {
	received := payload["signature"]
	if received == "" {
		return false
	}

	expected := computeSignature(g.config.SecretKey, payload)

	return subtle.ConstantTimeCompare([]byte(received), []byte(expected)) == 1
}

// ParseCallback normalizes the push payload into the same ConfirmationEvent
// the status poll produces. Callbacks arrive either as a naked field object
// or wrapped in a "response" envelope depending on the provider endpoint.
func (g *flittGateway) ParseCallback(raw []byte) (ConfirmationEvent, error) {
	var outer map[string]any
	if err := json.Unmarshal(raw, &outer); err != nil {
		return ConfirmationEvent{}, fmt.Errorf("decoding callback: %w", err)
	}

	if inner, ok := outer["response"].(map[string]any); ok {
		outer = inner
	}

	fields := toStringMap(outer)
	if fields["order_id"] == "" && fields["payment_id"] == "" {
		return ConfirmationEvent{}, errors.New("callback carries no order identifiers")
	}

	return normalizeEvent(fields), nil
}

func (g *flittGateway) post(ctx context.Context, endpoint string, payload map[string]string) (map[string]string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(requestEnvelope{Request: payload}); err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := g.client.Post(ctx, g.config.BaseURL+endpoint, &buf, headers)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}

		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, ErrServerError
	}

	var envelope responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding error: %w", err)
	}

	return toStringMap(envelope.Response), nil
}

func failureError(fields map[string]string) error {
	code, _ := strconv.Atoi(fields["error_code"])
	return mapFailureCode(code, fields["error_message"])
}

// normalizeEvent maps the provider's order status to the uniform outcome
// set. payment_id is the provider-assigned identifier; order_id echoes the
// reference chosen at order creation.
func normalizeEvent(fields map[string]string) ConfirmationEvent {
	amount := parseAmount(fields["amount"])
	reversal := parseAmount(fields["reversal_amount"])

	event := ConfirmationEvent{
		ProviderOrderID: fields["payment_id"],
		AlternateID:     fields["order_id"],
		RawPayload:      fields,
	}

	switch fields["order_status"] {
	case orderStatusApproved:
		event.Outcome = OutcomeSuccess
		event.SettledAmount = amount

	case orderStatusDeclined, orderStatusExpired:
		event.Outcome = OutcomeRejected

	case orderStatusReversed:
		if reversal > 0 && reversal < amount {
			event.Outcome = OutcomePartiallyRefunded
			event.SettledAmount = reversal
		} else {
			event.Outcome = OutcomeRefunded
			if reversal > 0 {
				event.SettledAmount = reversal
			} else {
				event.SettledAmount = amount
			}
		}

	case orderStatusCreated, orderStatusProcessing:
		event.Outcome = OutcomePendingAuth

	default:
		event.Outcome = OutcomeUnknown
	}

	return event
}

func parseAmount(raw string) int64 {
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}

	return amount
}

func toStringMap(fields map[string]any) map[string]string {
	out := make(map[string]string, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case string:
			out[key] = v
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[key] = strconv.FormatBool(v)
		case nil:
			out[key] = ""
		default:
			encoded, _ := json.Marshal(v)
			out[key] = string(encoded)
		}
	}

	return out
}
