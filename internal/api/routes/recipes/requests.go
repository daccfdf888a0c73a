package recipes

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/recipevault/recipevault/internal/database"
)

type recipeID string

func (r recipeID) Validate() error {
	v, err := strconv.ParseInt(string(r), 10, 64)
	if err != nil {
		return errors.New("expected an integer")
	}
	if v < 0 {
		return errors.New("recipe id should be non-negative")
	}
	return nil
}

func (r recipeID) Int64() int64 {
	v, _ := strconv.ParseInt(string(r), 10, 64)
	return v
}

// csvInt64s parses a comma-separated id list query parameter. An empty
// string yields no ids and no error.
func csvInt64s(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, errors.New("expected a comma-separated list of integer ids")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type TagRef struct {
	Name string `json:"name" validate:"required"`
}

type IngredientRef struct {
	Name string `json:"name" validate:"required"`
}

type CreateRecipeRequest struct {
	Title       string          `json:"title" validate:"required"`
	TimeMinutes *int32          `json:"time_minutes" validate:"required,gte=0"`
	Price       string          `json:"price" validate:"required,numeric"`
	Link        *string         `json:"link"`
	Description *string         `json:"description"`
	Tags        []TagRef        `json:"tags" validate:"omitempty,dive"`
	Ingredients []IngredientRef `json:"ingredients" validate:"omitempty,dive"`

	// Ownership comes from the access token. A client-supplied user field is
	// accepted and discarded.
	User json.RawMessage `json:"user"`
}

// UpdateRecipeRequest distinguishes absent keys from present-but-empty ones:
// nil Tags/Ingredients leave associations untouched, a present list replaces
// them wholesale.
type UpdateRecipeRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=1"`
	TimeMinutes *int32           `json:"time_minutes" validate:"omitempty,gte=0"`
	Price       *string          `json:"price" validate:"omitempty,numeric"`
	Link        *string          `json:"link"`
	Description *string          `json:"description"`
	Tags        *[]TagRef        `json:"tags" validate:"omitempty,dive"`
	Ingredients *[]IngredientRef `json:"ingredients" validate:"omitempty,dive"`

	User json.RawMessage `json:"user"`
}

func tagRefs(tags []TagRef) []database.NameRef {
	refs := make([]database.NameRef, len(tags))
	for i, t := range tags {
		refs[i] = database.NameRef{Name: t.Name}
	}
	return refs
}

func ingredientRefs(ingredients []IngredientRef) []database.NameRef {
	refs := make([]database.NameRef, len(ingredients))
	for i, ing := range ingredients {
		refs[i] = database.NameRef{Name: ing.Name}
	}
	return refs
}
