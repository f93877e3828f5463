package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	body := []byte(`{"id":123,"title":"Widget"}`)

	t.Run("accepts valid signature", func(t *testing.T) {
		sig := SignPayload(secret, body)
		assert.True(t, VerifyWebhookSignature(secret, body, sig))
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		sig := SignPayload("other-secret", body)
		assert.False(t, VerifyWebhookSignature(secret, body, sig))
	})

	t.Run("rejects tampered body", func(t *testing.T) {
		sig := SignPayload(secret, body)
		tampered := []byte(`{"id":123,"title":"Widget" }`)
		assert.False(t, VerifyWebhookSignature(secret, tampered, sig))
	})

	t.Run("rejects garbage signature", func(t *testing.T) {
		assert.False(t, VerifyWebhookSignature(secret, body, "not-base64!"))
	})

	t.Run("rejects empty signature", func(t *testing.T) {
		assert.False(t, VerifyWebhookSignature(secret, body, ""))
	})

	t.Run("rejects missing secret", func(t *testing.T) {
		sig := SignPayload(secret, body)
		assert.False(t, VerifyWebhookSignature("", body, sig))
	})
}
