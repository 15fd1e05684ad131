package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
)

// Verifier checks webhook authenticity with an HMAC shared secret.
type Verifier struct {
	secret []byte
	logger *slog.Logger
}

// NewVerifier builds a webhook verifier. An empty secret switches verification
// off entirely; that mode exists for local development only and is logged on
// every bypass.
func NewVerifier(secret string, logger *slog.Logger) *Verifier {
	return &Verifier{secret: []byte(secret), logger: logger}
}

// Verify recomputes the HMAC-SHA256 of the canonical payload serialization and
// compares it against the supplied signature in constant time.
func (v *Verifier) Verify(payload []byte, signature string) bool {
	if len(v.secret) == 0 {
		v.logger.Warn("webhook signature verification bypassed: no WEBHOOK_SECRET configured")
		return true
	}

	canonical, err := canonicalize(payload)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(canonical)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// canonicalize re-serializes the JSON payload with deterministic key order so
// the signature does not depend on how the provider formatted the body.
// encoding/json sorts map keys on marshal.
func canonicalize(payload []byte) ([]byte, error) {
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, err
	}
	return json.Marshal(decoded)
}
