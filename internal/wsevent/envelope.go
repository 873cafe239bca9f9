package wsevent

import (
	"encoding/json"

	"github.com/kowshik-thatinati/privacy-calls/internal/errors"
	"github.com/kowshik-thatinati/privacy-calls/internal/validation"
)

// Envelope is the wire format: a named event with an opaque payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Bind unmarshals an event payload into out and validates it.
func Bind[T any](data *json.RawMessage, out *T) error {
	if data == nil || len(*data) == 0 {
		return errors.New(ErrInvalidPayload, "missing payload")
	}
	if err := json.Unmarshal(*data, out); err != nil {
		return errors.Wrap(ErrInvalidPayload, err, "unmarshal payload")
	}
	if err := validation.Struct(out); err != nil {
		return errors.Wrap(ErrInvalidPayload, err, "validate payload")
	}
	return nil
}
