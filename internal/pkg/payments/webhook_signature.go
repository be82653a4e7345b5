package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyStripeSignature checks a stripe-signature header against the raw,
// unparsed request body. The expected signature is
// HMAC-SHA256(secret, "<timestamp>.<raw body>") hex encoded; the comparison
// runs in constant time. Verification must happen before any JSON parsing:
// re-serializing a parsed body changes its bytes and breaks the HMAC.
func VerifyStripeSignature(payload []byte, signatureHeader, webhookSecret string) error {
	timestamp, signature, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return err
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(signature))
	if err != nil {
		return ErrSignatureMismatch
	}

	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), decodedSig) {
		return ErrSignatureMismatch
	}
	return nil
}

// parseSignatureHeader extracts the t= and v1= parts of the comma-separated
// stripe-signature header. Both parts are required.
func parseSignatureHeader(header string) (timestamp, signature string, err error) {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "t="):
			timestamp = strings.TrimPrefix(part, "t=")
		case strings.HasPrefix(part, "v1="):
			signature = strings.TrimPrefix(part, "v1=")
		}
	}
	if timestamp == "" || signature == "" {
		return "", "", ErrMalformedSignatureHeader
	}
	return timestamp, signature, nil
}
