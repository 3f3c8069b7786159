package proto

import (
	"encoding/json"
	"fmt"

	"github.com/jwtly10/go-reqbench/internal/state"
)

type Snapshot struct {
	Store    StoreKind       `json:"store"`
	Request  *state.Request  `json:"request,omitempty"`
	Response *state.Response `json:"response,omitempty"`
}

type FieldUpdate struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// DecodePayload re-decodes a generic payload (as produced by json.Unmarshal into interface{}) into v
func DecodePayload(payload interface{}, v interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not marshal payload: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("could not unmarshal payload: %w", err)
	}
	return nil
}
