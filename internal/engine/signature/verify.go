package signature

import (
	"crypto/hmac"
	"encoding/hex"
)

// VerifySignature reports whether providedHex is the signature of payload under secret.
// Malformed hex and wrong-length signatures are reported as false, never as an error.
func VerifySignature(secret, payload []byte, providedHex string) bool {
	if len(secret) == 0 || len(payload) == 0 {
		return false
	}
	return equalDigest(sum(secret, payload), providedHex)
}

// equalDigest compares expected against the decoded providedHex with hmac.Equal.
// A decode failure still runs the comparison against a zeroed buffer.
func equalDigest(expected []byte, providedHex string) bool {
	provided, err := hex.DecodeString(providedHex)
	if err != nil {
		hmac.Equal(expected, make([]byte, len(expected)))
		return false
	}
	return hmac.Equal(expected, provided)
}
