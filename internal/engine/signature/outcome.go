package signature

import (
	"net/http"

	apierrors "sigcheck/internal/pkg/errors"
)

// Outcome is the result class of a webhook validation.
type Outcome int

const (
	Valid Outcome = iota
	InvalidSignature
	MissingSignature
	MissingSecret
	MalformedPayload
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "valid"
	case InvalidSignature:
		return "invalid_signature"
	case MissingSignature:
		return "missing_signature"
	case MissingSecret:
		return "missing_secret"
	case MalformedPayload:
		return "malformed_payload"
	default:
		return "unknown"
	}
}

// Code is the machine-readable code sent to clients. Valid has no code.
func (o Outcome) Code() string {
	switch o {
	case Valid:
		return ""
	case InvalidSignature:
		return apierrors.ErrCodeInvalidSignature
	case MissingSignature:
		return apierrors.ErrCodeMissingSignature
	case MissingSecret:
		return apierrors.ErrCodeMissingSecret
	case MalformedPayload:
		return apierrors.ErrCodeValidationFailure
	default:
		return apierrors.ErrCodeInternal
	}
}

func (o Outcome) HTTPStatus() int {
	switch o {
	case Valid:
		return http.StatusOK
	case InvalidSignature:
		return http.StatusUnauthorized
	case MissingSignature:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Err maps the outcome onto its sentinel error, nil for Valid.
func (o Outcome) Err() error {
	switch o {
	case Valid:
		return nil
	case InvalidSignature:
		return ErrInvalidSignature
	case MissingSignature:
		return ErrMissingSignature
	case MissingSecret:
		return ErrMissingSecret
	case MalformedPayload:
		return ErrMalformedPayload
	default:
		return ErrInternal
	}
}
