package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const createIngredient = `
INSERT INTO ingredients (user_id, name)
VALUES ($1, $2)
RETURNING id, user_id, name
`

func (q *Queries) CreateIngredient(ctx context.Context, arg CreateIngredientParams) (Ingredient, error) {
	var ing Ingredient
	err := q.pool.QueryRow(ctx, createIngredient, arg.UserID, arg.Name).Scan(&ing.ID, &ing.UserID, &ing.Name)
	return ing, err
}

const listIngredients = `
SELECT id, user_id, name
FROM ingredients
WHERE user_id = $1
ORDER BY name DESC, id DESC
`

const listAssignedIngredients = `
SELECT DISTINCT i.id, i.user_id, i.name
FROM ingredients i
JOIN recipe_ingredients ri ON ri.ingredient_id = i.id
WHERE i.user_id = $1
ORDER BY i.name DESC, i.id DESC
`

func (q *Queries) ListIngredients(ctx context.Context, arg ListIngredientsParams) ([]Ingredient, error) {
	query := listIngredients
	if arg.AssignedOnly {
		query = listAssignedIngredients
	}

	rows, err := q.pool.Query(ctx, query, arg.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	defer rows.Close()

	ingredients := make([]Ingredient, 0)
	for rows.Next() {
		var ing Ingredient
		if err := rows.Scan(&ing.ID, &ing.UserID, &ing.Name); err != nil {
			return nil, fmt.Errorf("scanning ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

const updateIngredient = `
UPDATE ingredients
SET name = $3
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, name
`

func (q *Queries) UpdateIngredient(ctx context.Context, arg UpdateIngredientParams) (Ingredient, error) {
	var ing Ingredient
	err := q.pool.QueryRow(ctx, updateIngredient, arg.ID, arg.UserID, arg.Name).Scan(&ing.ID, &ing.UserID, &ing.Name)
	return ing, err
}

const deleteIngredient = `
DELETE FROM ingredients
WHERE id = $1 AND user_id = $2
`

// DeleteIngredient returns pgx.ErrNoRows when the ingredient does not exist
// for this user.
func (q *Queries) DeleteIngredient(ctx context.Context, arg DeleteIngredientParams) error {
	tag, err := q.pool.Exec(ctx, deleteIngredient, arg.ID, arg.UserID)
	if err != nil {
		return fmt.Errorf("deleting ingredient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
