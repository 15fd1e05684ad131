package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/paw-haven/paw_haven/internal/logging"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyAcceptsCanonicalSignature(t *testing.T) {
	v := NewVerifier("secret", logging.Discard())

	payload := []byte(`{"event":"payment.succeeded","object":{"id":"pay_1","status":"succeeded"}}`)
	if !v.Verify(payload, sign("secret", payload)) {
		t.Fatalf("valid signature rejected")
	}
}

func TestVerifyIgnoresKeyOrderAndWhitespace(t *testing.T) {
	v := NewVerifier("secret", logging.Discard())

	// Signature computed over the canonical (sorted, compact) form.
	canonical := []byte(`{"event":"payment.succeeded","object":{"id":"pay_1","status":"succeeded"}}`)
	signature := sign("secret", canonical)

	reordered := []byte(`{
        "object": {"status": "succeeded", "id": "pay_1"},
        "event": "payment.succeeded"
    }`)
	if !v.Verify(reordered, signature) {
		t.Fatalf("signature must not depend on provider formatting")
	}
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("secret", logging.Discard())
	payload := []byte(`{"event":"payment.succeeded"}`)

	if v.Verify(payload, sign("other-secret", payload)) {
		t.Fatalf("wrong-key signature accepted")
	}
	if v.Verify(payload, "not-hex") {
		t.Fatalf("garbage signature accepted")
	}
	if v.Verify([]byte("not json"), sign("secret", []byte("not json"))) {
		t.Fatalf("non-JSON payload accepted")
	}
}

func TestVerifyBypassWithoutSecret(t *testing.T) {
	v := NewVerifier("", logging.Discard())
	if !v.Verify([]byte(`{}`), "") {
		t.Fatalf("empty secret must disable verification")
	}
}
