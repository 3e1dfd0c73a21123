package transport

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

var jsonNull = []byte("null")

// OptionalUUID distinguishes "field absent" from "field set to null".
// Set is true whenever the key appeared in the request body; Value is
// nil when the client sent null to clear the field.
type OptionalUUID struct {
	Value *uuid.UUID
	Set   bool
}

func (o *OptionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, jsonNull) {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// OptionalFloat is the tri-state form of a numeric field.
type OptionalFloat struct {
	Value *float64
	Set   bool
}

func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, jsonNull) {
		o.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// OptionalTime is the tri-state form of a timestamp field.
type OptionalTime struct {
	Value *time.Time
	Set   bool
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, jsonNull) {
		o.Value = nil
		return nil
	}
	var v time.Time
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
