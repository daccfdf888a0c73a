package tags

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type tagID string

func (id tagID) Validate() error {
	v, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid tag id %q", string(id))
	}
	if v < 1 {
		return fmt.Errorf("invalid tag id %q", string(id))
	}
	return nil
}

func (id tagID) Int64() int64 {
	v, _ := strconv.ParseInt(string(id), 10, 64)
	return v
}

// assignedOnly reports whether the assigned_only query parameter asks to
// restrict the listing to tags attached to at least one recipe. Anything
// other than "1" or "true" counts as false.
func assignedOnly(raw string) bool {
	return raw == "1" || raw == "true"
}

type TagRequest struct {
	Name string `json:"name" validate:"required,max=255"`

	// Accepted and discarded so clients may echo the owner back.
	User json.RawMessage `json:"user,omitempty"`
}
