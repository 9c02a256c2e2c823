package payprovider_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/BekaChkhiro/homevend-server-sub000/pkg/mocks"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/payprovider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testConfig = payprovider.Config{
	BaseURL:    "https://pay.flitt.test",
	MerchantID: "1549901",
	SecretKey:  "test",
	Currency:   "GEL",
	Timeout:    10 * time.Second,
	MaxRetries: 3,
}

func matchRequestFields(expected map[string]string) interface{} {
	return mock.MatchedBy(func(body interface{}) bool {
		buf, ok := body.(*bytes.Buffer)
		if !ok {
			return false
		}

		var envelope struct {
			Request map[string]string `json:"request"`
		}
		if err := json.NewDecoder(bytes.NewReader(buf.Bytes())).Decode(&envelope); err != nil {
			return false
		}

		for key, value := range expected {
			if envelope.Request[key] != value {
				return false
			}
		}

		return envelope.Request["signature"] != ""
	})
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestFlittGateway_CreateOrder(t *testing.T) {
	checkoutURL := "https://pay.flitt.test/api/checkout/url"
	headers := map[string]string{"Content-Type": "application/json"}

	request := payprovider.CreateOrderRequest{
		OrderRef:    "c3a1e8f0-5b2d-4c6e-9a7f-1d2e3f4a5b6c",
		Amount:      5000,
		Description: "wallet top-up",
		CallbackURL: "https://api.example.com/api/v1/payments/callback",
	}

	t.Run("successful order creation", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		body := `{
			"response": {
				"response_status": "success",
				"payment_id": 805243938,
				"checkout_url": "https://pay.flitt.test/merchants/1549901/default/index.html?token=abc"
			}
		}`

		mockClient.On("Post", context.Background(), checkoutURL, matchRequestFields(map[string]string{
			"order_id":    request.OrderRef,
			"merchant_id": "1549901",
			"amount":      "5000",
			"currency":    "GEL",
		}), headers).Return(jsonResponse(200, body), nil)

		response, err := gateway.CreateOrder(context.Background(), request)

		assert.NoError(t, err)
		assert.Equal(t, "805243938", response.ProviderOrderID)
		assert.Contains(t, response.CheckoutURL, "token=abc")
		mockClient.AssertExpectations(t)
	})

	t.Run("falls back to configured currency", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		body := `{"response": {"response_status": "success", "payment_id": 1, "checkout_url": "https://x"}}`

		mockClient.On("Post", context.Background(), checkoutURL,
			matchRequestFields(map[string]string{"currency": "GEL"}), headers).
			Return(jsonResponse(200, body), nil)

		_, err := gateway.CreateOrder(context.Background(), request)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("business rejection", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		body := `{
			"response": {
				"response_status": "failure",
				"error_code": 1008,
				"error_message": "Invalid amount"
			}
		}`

		mockClient.On("Post", context.Background(), checkoutURL, mock.Anything, headers).
			Return(jsonResponse(200, body), nil)

		_, err := gateway.CreateOrder(context.Background(), request)

		var rejection payprovider.RejectionError
		assert.ErrorAs(t, err, &rejection)
		assert.Equal(t, 1008, rejection.Code)
	})

	t.Run("rejection without message gets a readable default", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		body := `{
			"response": {
				"response_status": "failure",
				"error_code": 1012
			}
		}`

		mockClient.On("Post", context.Background(), checkoutURL, mock.Anything, headers).
			Return(jsonResponse(200, body), nil)

		_, err := gateway.CreateOrder(context.Background(), request)

		var rejection payprovider.RejectionError
		assert.ErrorAs(t, err, &rejection)
		assert.Equal(t, 1012, rejection.Code)
		assert.Equal(t, "merchant is blocked", rejection.Message)
	})

	t.Run("timeout", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		mockClient.On("Post", context.Background(), checkoutURL, mock.Anything, headers).
			Return((*http.Response)(nil), context.DeadlineExceeded)

		_, err := gateway.CreateOrder(context.Background(), request)

		assert.ErrorIs(t, err, payprovider.ErrTimeout)
	})

	t.Run("upstream server error", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		mockClient.On("Post", context.Background(), checkoutURL, mock.Anything, headers).
			Return(jsonResponse(502, `{}`), nil)

		_, err := gateway.CreateOrder(context.Background(), request)

		assert.ErrorIs(t, err, payprovider.ErrServerError)
	})
}

func TestFlittGateway_GetStatus(t *testing.T) {
	statusURL := "https://pay.flitt.test/api/status/order_id"
	headers := map[string]string{"Content-Type": "application/json"}
	orderRef := "c3a1e8f0-5b2d-4c6e-9a7f-1d2e3f4a5b6c"

	statusBody := func(orderStatus string, extra string) string {
		return `{
			"response": {
				"response_status": "success",
				"order_status": "` + orderStatus + `",
				"order_id": "` + orderRef + `",
				"payment_id": 805243938,
				"amount": "5000"` + extra + `
			}
		}`
	}

	t.Run("approved order", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		mockClient.On("Post", context.Background(), statusURL, matchRequestFields(map[string]string{
			"order_id":    orderRef,
			"merchant_id": "1549901",
		}), headers).Return(jsonResponse(200, statusBody("approved", "")), nil)

		event, err := gateway.GetStatus(context.Background(), orderRef)

		assert.NoError(t, err)
		assert.Equal(t, payprovider.OutcomeSuccess, event.Outcome)
		assert.Equal(t, "805243938", event.ProviderOrderID)
		assert.Equal(t, orderRef, event.AlternateID)
		assert.Equal(t, int64(5000), event.SettledAmount)
	})

	t.Run("declined order", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		mockClient.On("Post", context.Background(), statusURL, mock.Anything, headers).
			Return(jsonResponse(200, statusBody("declined", "")), nil)

		event, err := gateway.GetStatus(context.Background(), orderRef)

		assert.NoError(t, err)
		assert.Equal(t, payprovider.OutcomeRejected, event.Outcome)
	})

	t.Run("expired order", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		mockClient.On("Post", context.Background(), statusURL, mock.Anything, headers).
			Return(jsonResponse(200, statusBody("expired", "")), nil)

		event, err := gateway.GetStatus(context.Background(), orderRef)

		assert.NoError(t, err)
		assert.Equal(t, payprovider.OutcomeRejected, event.Outcome)
	})

	t.Run("full reversal", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		mockClient.On("Post", context.Background(), statusURL, mock.Anything, headers).
			Return(jsonResponse(200, statusBody("reversed", `, "reversal_amount": "5000"`)), nil)

		event, err := gateway.GetStatus(context.Background(), orderRef)

		assert.NoError(t, err)
		assert.Equal(t, payprovider.OutcomeRefunded, event.Outcome)
		assert.Equal(t, int64(5000), event.SettledAmount)
	})

	t.Run("partial reversal", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		mockClient.On("Post", context.Background(), statusURL, mock.Anything, headers).
			Return(jsonResponse(200, statusBody("reversed", `, "reversal_amount": "2000"`)), nil)

		event, err := gateway.GetStatus(context.Background(), orderRef)

		assert.NoError(t, err)
		assert.Equal(t, payprovider.OutcomePartiallyRefunded, event.Outcome)
		assert.Equal(t, int64(2000), event.SettledAmount)
	})

	t.Run("processing order stays pending", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		mockClient.On("Post", context.Background(), statusURL, mock.Anything, headers).
			Return(jsonResponse(200, statusBody("processing", "")), nil)

		event, err := gateway.GetStatus(context.Background(), orderRef)

		assert.NoError(t, err)
		assert.Equal(t, payprovider.OutcomePendingAuth, event.Outcome)
	})

	t.Run("unrecognized status maps to unknown", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		mockClient.On("Post", context.Background(), statusURL, mock.Anything, headers).
			Return(jsonResponse(200, statusBody("settlement_in_review", "")), nil)

		event, err := gateway.GetStatus(context.Background(), orderRef)

		assert.NoError(t, err)
		assert.Equal(t, payprovider.OutcomeUnknown, event.Outcome)
	})

	t.Run("unknown order", func(t *testing.T) {
		mockClient := &mocks.HTTPClient{}
		gateway := payprovider.NewFlittGateway(testConfig, mockClient)

		body := `{
			"response": {
				"response_status": "failure",
				"error_code": 1018,
				"error_message": "Order not found"
			}
		}`

		mockClient.On("Post", context.Background(), statusURL, mock.Anything, headers).
			Return(jsonResponse(200, body), nil)

		_, err := gateway.GetStatus(context.Background(), orderRef)

		assert.ErrorIs(t, err, payprovider.ErrOrderNotFound)
	})
}

func TestFlittGateway_ParseCallback(t *testing.T) {
	gateway := payprovider.NewFlittGateway(testConfig, &mocks.HTTPClient{})

	t.Run("naked payload", func(t *testing.T) {
		raw := []byte(`{
			"order_id": "c3a1e8f0-5b2d-4c6e-9a7f-1d2e3f4a5b6c",
			"payment_id": 805243938,
			"order_status": "approved",
			"amount": "5000"
		}`)

		event, err := gateway.ParseCallback(raw)

		assert.NoError(t, err)
		assert.Equal(t, payprovider.OutcomeSuccess, event.Outcome)
		assert.Equal(t, "805243938", event.ProviderOrderID)
		assert.Equal(t, int64(5000), event.SettledAmount)
	})

	t.Run("enveloped payload", func(t *testing.T) {
		raw := []byte(`{"response": {"order_id": "abc", "order_status": "declined"}}`)

		event, err := gateway.ParseCallback(raw)

		assert.NoError(t, err)
		assert.Equal(t, payprovider.OutcomeRejected, event.Outcome)
		assert.Equal(t, "abc", event.AlternateID)
	})

	t.Run("missing identifiers", func(t *testing.T) {
		_, err := gateway.ParseCallback([]byte(`{"order_status": "approved"}`))

		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := gateway.ParseCallback([]byte(`not json`))

		assert.Error(t, err)
	})
}
