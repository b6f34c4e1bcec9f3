package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// DigestSize is the length in bytes of an HMAC-SHA256 digest.
const DigestSize = sha256.Size

// GenerateSignature returns the lowercase hex HMAC-SHA256 of payload keyed by secret.
func GenerateSignature(secret, payload []byte) (string, error) {
	if len(secret) == 0 || len(payload) == 0 {
		return "", ErrMissingInput
	}
	return hex.EncodeToString(sum(secret, payload)), nil
}

func sum(secret, payload []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write(payload)
	return h.Sum(nil)
}
