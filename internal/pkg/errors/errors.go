package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the envelope for every non-2xx JSON response.
type ErrorResponse struct {
	Code  string      `json:"code,omitempty"`
	Error string      `json:"error"`
	Debug interface{} `json:"debug,omitempty"`
}

const (
	ErrCodeUnauthorized      = "unauthorized"
	ErrCodeForbidden         = "forbidden"
	ErrCodeNotFound          = "not_found"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
	ErrCodePayloadTooLarge   = "payload_too_large"
	ErrCodeInternal          = "internal_error"
	ErrCodeMissingSecret     = "missing_secret"
	ErrCodeMissingSignature  = "missing_signature"
	ErrCodeInvalidSignature  = "invalid_signature"
	ErrCodeValidationFailure = "validation_error"
)

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(body)
}

func WriteError(w http.ResponseWriter, status int, code, message string, debug interface{}) {
	WriteJSON(w, status, ErrorResponse{
		Code:  code,
		Error: message,
		Debug: debug,
	})
}
