package signature

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	EventProjectCreated    = "project.created"
	EventDeploymentCreated = "deployment.created"
)

// NoType is rendered in place of an absent event type.
const NoType = "(none)"

const unknownName = "unknown"

var errNotObject = errors.New("body is not a JSON object")

// Event is the envelope every webhook body is decoded into.
// Type and Data keep their raw JSON; nil means the field was absent.
type Event struct {
	Type json.RawMessage
	Data json.RawMessage
}

// ParseEvent decodes a webhook body, which must be a JSON object.
func ParseEvent(raw []byte) (*Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, errNotObject)
	}
	return &Event{Type: fields["type"], Data: fields["data"]}, nil
}

// TypeName returns the event type. Strings give their value, absent or null
// gives NoType, and any other value gives its compact JSON text.
func (e *Event) TypeName() string {
	if isAbsent(e.Type) {
		return NoType
	}
	var s string
	if err := json.Unmarshal(e.Type, &s); err == nil {
		return s
	}
	return compact(e.Type)
}

// ProjectName returns data.name, or "unknown" when data is not an object or
// the name is absent, null, false, zero, empty or not a scalar.
func (e *Event) ProjectName() string {
	var data map[string]json.RawMessage
	if err := json.Unmarshal(e.Data, &data); err != nil || data == nil {
		return unknownName
	}

	name := bytes.TrimSpace(data["name"])
	if isAbsent(name) {
		return unknownName
	}
	switch name[0] {
	case '"':
		var s string
		if err := json.Unmarshal(name, &s); err != nil || s == "" {
			return unknownName
		}
		return s
	case '{', '[', 'f':
		return unknownName
	case 't':
		return "true"
	default:
		var n json.Number
		if err := json.Unmarshal(name, &n); err != nil {
			return unknownName
		}
		if f, err := n.Float64(); err != nil || f == 0 {
			return unknownName
		}
		return n.String()
	}
}

// Message builds the confirmation text for a validated event.
func (e *Event) Message() string {
	typ := e.TypeName()
	if isString(e.Type) {
		switch typ {
		case EventProjectCreated:
			return fmt.Sprintf("Project \"%s\" created successfully", e.ProjectName())
		case EventDeploymentCreated:
			return "Deployment created successfully"
		}
	}
	return fmt.Sprintf("Webhook type \"%s\" processed successfully", typ)
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func isString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
