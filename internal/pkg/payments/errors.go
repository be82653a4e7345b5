package payments

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means the caller's access token could not be
	// resolved to a user identity.
	ErrUnauthenticated = errors.New("payments: invalid or missing access token")

	// ErrGameNotFound means the requested game id is not in the catalog.
	ErrGameNotFound = errors.New("payments: game not found")

	// ErrMalformedSignatureHeader means the stripe-signature header is
	// missing its t= or v1= part.
	ErrMalformedSignatureHeader = errors.New("payments: malformed signature header")

	// ErrSignatureMismatch means the v1 signature does not match the HMAC of
	// the raw payload.
	ErrSignatureMismatch = errors.New("payments: signature mismatch")

	// ErrMissingMetadata means a completed checkout session carries no
	// user_id/game_id metadata. Fatal for that event; there is nothing to
	// reconcile it against.
	ErrMissingMetadata = errors.New("payments: missing user_id or game_id metadata")
)

// UpstreamError reports a non-2xx response from the payment processor. The
// body is kept for server-side logging and never exposed to HTTP callers.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s request failed: status=%d body=%s", e.Service, e.StatusCode, e.Body)
}
