package payprovider_test

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/BekaChkhiro/homevend-server-sub000/pkg/mocks"
	"github.com/BekaChkhiro/homevend-server-sub000/pkg/payprovider"
	"github.com/stretchr/testify/assert"
)

func sign(parts ...string) string {
	joined := parts[0]
	for _, part := range parts[1:] {
		joined += "|" + part
	}
	sum := sha1.Sum([]byte(joined))
	return hex.EncodeToString(sum[:])
}

func TestFlittGateway_VerifySignature(t *testing.T) {
	gateway := payprovider.NewFlittGateway(testConfig, &mocks.HTTPClient{})

	t.Run("valid signature", func(t *testing.T) {
		// Keys sorted: amount, merchant_id, order_id, order_status.
		payload := map[string]string{
			"order_id":     "abc",
			"merchant_id":  "1549901",
			"amount":       "5000",
			"order_status": "approved",
		}
		payload["signature"] = sign("test", "5000", "1549901", "abc", "approved")

		assert.True(t, gateway.VerifySignature(payload))
	})

	t.Run("empty values are excluded from the base string", func(t *testing.T) {
		payload := map[string]string{
			"order_id":        "abc",
			"merchant_id":     "1549901",
			"amount":          "5000",
			"order_status":    "approved",
			"reversal_amount": "",
		}
		payload["signature"] = sign("test", "5000", "1549901", "abc", "approved")

		assert.True(t, gateway.VerifySignature(payload))
	})

	t.Run("response_signature_string is ignored", func(t *testing.T) {
		payload := map[string]string{
			"order_id":                  "abc",
			"merchant_id":               "1549901",
			"amount":                    "5000",
			"order_status":              "approved",
			"response_signature_string": "test|5000|1549901|abc|approved",
		}
		payload["signature"] = sign("test", "5000", "1549901", "abc", "approved")

		assert.True(t, gateway.VerifySignature(payload))
	})

	t.Run("tampered amount", func(t *testing.T) {
		payload := map[string]string{
			"order_id":     "abc",
			"merchant_id":  "1549901",
			"amount":       "5000",
			"order_status": "approved",
		}
		payload["signature"] = sign("test", "5000", "1549901", "abc", "approved")
		payload["amount"] = "999900"

		assert.False(t, gateway.VerifySignature(payload))
	})

	t.Run("missing signature", func(t *testing.T) {
		payload := map[string]string{"order_id": "abc"}

		assert.False(t, gateway.VerifySignature(payload))
	})

	t.Run("wrong secret", func(t *testing.T) {
		payload := map[string]string{
			"order_id":     "abc",
			"merchant_id":  "1549901",
			"amount":       "5000",
			"order_status": "approved",
		}
		payload["signature"] = sign("othersecret", "5000", "1549901", "abc", "approved")

		assert.False(t, gateway.VerifySignature(payload))
	})
}
