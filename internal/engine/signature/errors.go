package signature

import "errors"

var (
	ErrMissingInput     = errors.New("secret and payload are required")
	ErrMissingSecret    = errors.New("no integration secret configured")
	ErrMissingSignature = errors.New("no signature provided")
	ErrInvalidSignature = errors.New("signature mismatch")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrInternal         = errors.New("internal error")
)
