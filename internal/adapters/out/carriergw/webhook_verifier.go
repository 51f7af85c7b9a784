package carriergw

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// HMACWebhookVerifier authenticates tracking webhooks with per-carrier shared
// secrets. Carriers sign the raw request body with HMAC-SHA256 and send the
// hex digest in a signature header.
type HMACWebhookVerifier struct {
	secrets map[string]string
}

// NewHMACWebhookVerifier creates a verifier from carrier name to shared secret.
func NewHMACWebhookVerifier(secrets map[string]string) (*HMACWebhookVerifier, error) {
	if len(secrets) == 0 {
		return nil, errs.NewValueIsRequiredError("secrets")
	}

	return &HMACWebhookVerifier{secrets: secrets}, nil
}

// Verify checks the signature against the raw body for the given carrier.
func (v *HMACWebhookVerifier) Verify(carrier string, body []byte, signature string) error {
	secret, ok := v.secrets[carrier]
	if !ok {
		return errs.NewObjectNotFoundError("webhook secret", carrier)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ports.ErrWebhookSignatureInvalid
	}

	return nil
}
