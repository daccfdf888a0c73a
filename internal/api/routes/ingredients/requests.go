package ingredients

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type ingredientID string

func (id ingredientID) Validate() error {
	v, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid ingredient id %q", string(id))
	}
	if v < 1 {
		return fmt.Errorf("invalid ingredient id %q", string(id))
	}
	return nil
}

func (id ingredientID) Int64() int64 {
	v, _ := strconv.ParseInt(string(id), 10, 64)
	return v
}

func assignedOnly(raw string) bool {
	return raw == "1" || raw == "true"
}

type IngredientRequest struct {
	Name string `json:"name" validate:"required,max=255"`

	// Accepted and discarded so clients may echo the owner back.
	User json.RawMessage `json:"user,omitempty"`
}
