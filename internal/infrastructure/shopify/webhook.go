package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Webhook header names as the platform sends them
const (
	HeaderHmac    = "X-Shopify-Hmac-Sha256"
	HeaderTopic   = "X-Shopify-Topic"
	HeaderEventID = "X-Shopify-Event-Id"
	HeaderDomain  = "X-Shopify-Shop-Domain"
)

// VerifyWebhookSignature checks the HMAC-SHA256 signature of a webhook
// delivery. The digest must be computed over the exact raw request
// bytes; any re-serialization of the payload breaks verification. The
// comparison is constant-time.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignPayload computes the signature the platform would attach to the
// given body. Used by tests and the local delivery tool.
func SignPayload(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
