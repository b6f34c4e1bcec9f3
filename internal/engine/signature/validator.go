package signature

import (
	"encoding/hex"
	"time"
)

// TimestampFormat is the layout of ValidationResult.Timestamp.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// ValidationResult is what ValidateWebhook reports back to the caller.
// Expected and Provided are only set for InvalidSignature and exist for
// debugging; they must not be exposed by a hardened deployment.
type ValidationResult struct {
	Outcome   Outcome
	Message   string
	Timestamp string
	EventType string
	Expected  string
	Provided  string
}

// Err returns the sentinel error for the outcome, nil when valid.
func (r ValidationResult) Err() error {
	return r.Outcome.Err()
}

// ValidateWebhook checks an inbound webhook end to end using the wall clock.
func ValidateWebhook(secret, rawBody []byte, providedHex string) ValidationResult {
	return validateWebhook(secret, rawBody, providedHex, time.Now)
}

func validateWebhook(secret, rawBody []byte, providedHex string, now func() time.Time) ValidationResult {
	if len(secret) == 0 {
		return ValidationResult{Outcome: MissingSecret, Message: "No integration secret found"}
	}
	if providedHex == "" {
		return ValidationResult{Outcome: MissingSignature, Message: "No signature header found"}
	}

	expected := sum(secret, rawBody)
	if !equalDigest(expected, providedHex) {
		return ValidationResult{
			Outcome:  InvalidSignature,
			Message:  "Signature didn't match",
			Expected: hex.EncodeToString(expected),
			Provided: providedHex,
		}
	}

	evt, err := ParseEvent(rawBody)
	if err != nil {
		return ValidationResult{Outcome: MalformedPayload, Message: "Failed to validate webhook"}
	}

	return ValidationResult{
		Outcome:   Valid,
		Message:   evt.Message(),
		Timestamp: now().UTC().Format(TimestampFormat),
		EventType: evt.TypeName(),
	}
}
