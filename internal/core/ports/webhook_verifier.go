package ports

import "errors"

// ErrWebhookSignatureInvalid is returned when a tracking webhook's signature
// does not match the shared secret for its carrier.
var ErrWebhookSignatureInvalid = errors.New("webhook signature is invalid")

// WebhookVerifier authenticates inbound carrier webhook payloads.
type WebhookVerifier interface {
	// Verify checks the signature header against the raw request body for the
	// given carrier. Returns ErrWebhookSignatureInvalid on mismatch and an
	// object-not-found error for carriers without a configured secret.
	Verify(carrier string, body []byte, signature string) error
}
