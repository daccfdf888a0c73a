package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const recipeColumns = `id, user_id, title, time_minutes, price::text, link, description, image_url, created_at`

func scanRecipe(row pgx.Row) (Recipe, error) {
	var r Recipe
	err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.TimeMinutes, &r.Price,
		&r.Link, &r.Description, &r.ImageURL, &r.CreatedAt)
	return r, err
}

const createRecipe = `
INSERT INTO recipes (user_id, title, time_minutes, price, link, description)
VALUES ($1, $2, $3, $4::numeric, $5, $6)
RETURNING ` + recipeColumns

// CreateRecipe inserts the recipe row and resolves every nested tag and
// ingredient name inside one transaction.
func (q *Queries) CreateRecipe(ctx context.Context, arg CreateRecipeParams) (Recipe, error) {
	var recipe Recipe
	err := q.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		recipe, err = scanRecipe(tx.QueryRow(ctx, createRecipe,
			arg.UserID, arg.Title, arg.TimeMinutes, arg.Price, arg.Link, arg.Description))
		if err != nil {
			return fmt.Errorf("inserting recipe: %w", err)
		}

		if err := attachTags(ctx, tx, &recipe, arg.Tags); err != nil {
			return err
		}
		return attachIngredients(ctx, tx, &recipe, arg.Ingredients)
	})
	if err != nil {
		return Recipe{}, err
	}
	return recipe, nil
}

const getRecipe = `
SELECT ` + recipeColumns + `
FROM recipes
WHERE id = $1 AND user_id = $2
`

func (q *Queries) GetRecipe(ctx context.Context, arg GetRecipeParams) (Recipe, error) {
	recipe, err := scanRecipe(q.pool.QueryRow(ctx, getRecipe, arg.ID, arg.UserID))
	if err != nil {
		return Recipe{}, err
	}
	if err := loadRelations(ctx, q.pool, []*Recipe{&recipe}); err != nil {
		return Recipe{}, err
	}
	return recipe, nil
}

const listRecipesBase = `
SELECT ` + recipeColumns + `
FROM recipes r
WHERE r.user_id = $1`

// The EXISTS filters keep the result set free of duplicates no matter how
// many of the given IDs a recipe matches.
const listRecipesTagFilter = `
  AND EXISTS (
    SELECT 1 FROM recipe_tags rt
    WHERE rt.recipe_id = r.id AND rt.tag_id = ANY($%d)
  )`

const listRecipesIngredientFilter = `
  AND EXISTS (
    SELECT 1 FROM recipe_ingredients ri
    WHERE ri.recipe_id = r.id AND ri.ingredient_id = ANY($%d)
  )`

const listRecipesOrder = `
ORDER BY r.id DESC`

func (q *Queries) ListRecipes(ctx context.Context, arg ListRecipesParams) ([]Recipe, error) {
	query := listRecipesBase
	args := []any{arg.UserID}
	if len(arg.TagIDs) > 0 {
		args = append(args, arg.TagIDs)
		query += fmt.Sprintf(listRecipesTagFilter, len(args))
	}
	if len(arg.IngredientIDs) > 0 {
		args = append(args, arg.IngredientIDs)
		query += fmt.Sprintf(listRecipesIngredientFilter, len(args))
	}
	query += listRecipesOrder

	rows, err := q.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing recipes: %w", err)
	}
	defer rows.Close()

	recipes := make([]Recipe, 0)
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recipe: %w", err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	refs := make([]*Recipe, len(recipes))
	for i := range recipes {
		refs[i] = &recipes[i]
	}
	if err := loadRelations(ctx, q.pool, refs); err != nil {
		return nil, err
	}
	return recipes, nil
}

const updateRecipe = `
UPDATE recipes
SET title = COALESCE($3, title),
    time_minutes = COALESCE($4, time_minutes),
    price = COALESCE($5::numeric, price),
    link = COALESCE($6, link),
    description = COALESCE($7, description)
WHERE id = $1 AND user_id = $2
RETURNING ` + recipeColumns

// UpdateRecipe applies a partial update. When Tags or Ingredients is non-nil
// the existing associations are replaced wholesale; nil leaves them alone.
// The row update and association rewrite share one transaction.
func (q *Queries) UpdateRecipe(ctx context.Context, arg UpdateRecipeParams) (Recipe, error) {
	var recipe Recipe
	err := q.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		recipe, err = scanRecipe(tx.QueryRow(ctx, updateRecipe,
			arg.ID, arg.UserID, arg.Title, arg.TimeMinutes, arg.Price, arg.Link, arg.Description))
		if err != nil {
			return err
		}

		if arg.Tags != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, arg.ID); err != nil {
				return fmt.Errorf("clearing recipe tags: %w", err)
			}
			if err := attachTags(ctx, tx, &recipe, *arg.Tags); err != nil {
				return err
			}
		}
		if arg.Ingredients != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, arg.ID); err != nil {
				return fmt.Errorf("clearing recipe ingredients: %w", err)
			}
			if err := attachIngredients(ctx, tx, &recipe, *arg.Ingredients); err != nil {
				return err
			}
		}

		if arg.Tags == nil || arg.Ingredients == nil {
			// Untouched associations still belong in the response.
			return loadRelations(ctx, tx, []*Recipe{&recipe})
		}
		return nil
	})
	if err != nil {
		return Recipe{}, err
	}
	return recipe, nil
}

const deleteRecipe = `
DELETE FROM recipes
WHERE id = $1 AND user_id = $2
`

// DeleteRecipe removes the recipe and, via FK cascade, its association rows.
// Shared tags and ingredients survive. Returns pgx.ErrNoRows when the recipe
// does not exist for this user.
func (q *Queries) DeleteRecipe(ctx context.Context, arg DeleteRecipeParams) error {
	tag, err := q.pool.Exec(ctx, deleteRecipe, arg.ID, arg.UserID)
	if err != nil {
		return fmt.Errorf("deleting recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

const updateRecipeImage = `
UPDATE recipes
SET image_url = $3
WHERE id = $1 AND user_id = $2
RETURNING ` + recipeColumns

func (q *Queries) UpdateRecipeImage(ctx context.Context, arg UpdateRecipeImageParams) (Recipe, error) {
	recipe, err := scanRecipe(q.pool.QueryRow(ctx, updateRecipeImage, arg.ID, arg.UserID, arg.ImageURL))
	if err != nil {
		return Recipe{}, err
	}
	if err := loadRelations(ctx, q.pool, []*Recipe{&recipe}); err != nil {
		return Recipe{}, err
	}
	return recipe, nil
}

const getOrCreateTag = `
SELECT id, user_id, name FROM tags
WHERE user_id = $1 AND name = $2
ORDER BY id
LIMIT 1
`

const insertTag = `
INSERT INTO tags (user_id, name)
VALUES ($1, $2)
RETURNING id, user_id, name
`

func getOrCreateTagRow(ctx context.Context, db DBTX, userID int64, name string) (Tag, error) {
	var t Tag
	err := db.QueryRow(ctx, getOrCreateTag, userID, name).Scan(&t.ID, &t.UserID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		err = db.QueryRow(ctx, insertTag, userID, name).Scan(&t.ID, &t.UserID, &t.Name)
	}
	if err != nil {
		return Tag{}, fmt.Errorf("resolving tag %q: %w", name, err)
	}
	return t, nil
}

func attachTags(ctx context.Context, tx pgx.Tx, recipe *Recipe, refs []NameRef) error {
	recipe.Tags = make([]Tag, 0, len(refs))
	for _, ref := range refs {
		tag, err := getOrCreateTagRow(ctx, tx, recipe.UserID, ref.Name)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO recipe_tags (recipe_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			recipe.ID, tag.ID)
		if err != nil {
			return fmt.Errorf("attaching tag %q: %w", ref.Name, err)
		}
		recipe.Tags = append(recipe.Tags, tag)
	}
	return nil
}

const getOrCreateIngredient = `
SELECT id, user_id, name FROM ingredients
WHERE user_id = $1 AND name = $2
ORDER BY id
LIMIT 1
`

const insertIngredient = `
INSERT INTO ingredients (user_id, name)
VALUES ($1, $2)
RETURNING id, user_id, name
`

func getOrCreateIngredientRow(ctx context.Context, db DBTX, userID int64, name string) (Ingredient, error) {
	var ing Ingredient
	err := db.QueryRow(ctx, getOrCreateIngredient, userID, name).Scan(&ing.ID, &ing.UserID, &ing.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		err = db.QueryRow(ctx, insertIngredient, userID, name).Scan(&ing.ID, &ing.UserID, &ing.Name)
	}
	if err != nil {
		return Ingredient{}, fmt.Errorf("resolving ingredient %q: %w", name, err)
	}
	return ing, nil
}

func attachIngredients(ctx context.Context, tx pgx.Tx, recipe *Recipe, refs []NameRef) error {
	recipe.Ingredients = make([]Ingredient, 0, len(refs))
	for _, ref := range refs {
		ing, err := getOrCreateIngredientRow(ctx, tx, recipe.UserID, ref.Name)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO recipe_ingredients (recipe_id, ingredient_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			recipe.ID, ing.ID)
		if err != nil {
			return fmt.Errorf("attaching ingredient %q: %w", ref.Name, err)
		}
		recipe.Ingredients = append(recipe.Ingredients, ing)
	}
	return nil
}

const recipeTagsByRecipe = `
SELECT rt.recipe_id, t.id, t.user_id, t.name
FROM recipe_tags rt
JOIN tags t ON t.id = rt.tag_id
WHERE rt.recipe_id = ANY($1)
ORDER BY t.name
`

const recipeIngredientsByRecipe = `
SELECT ri.recipe_id, i.id, i.user_id, i.name
FROM recipe_ingredients ri
JOIN ingredients i ON i.id = ri.ingredient_id
WHERE ri.recipe_id = ANY($1)
ORDER BY i.name
`

// loadRelations fills Tags and Ingredients for the given recipes with two
// batched queries.
func loadRelations(ctx context.Context, db DBTX, recipes []*Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]int64, len(recipes))
	byID := make(map[int64]*Recipe, len(recipes))
	for i, r := range recipes {
		ids[i] = r.ID
		byID[r.ID] = r
		r.Tags = make([]Tag, 0)
		r.Ingredients = make([]Ingredient, 0)
	}

	rows, err := db.Query(ctx, recipeTagsByRecipe, ids)
	if err != nil {
		return fmt.Errorf("loading recipe tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var recipeID int64
		var t Tag
		if err := rows.Scan(&recipeID, &t.ID, &t.UserID, &t.Name); err != nil {
			return fmt.Errorf("scanning recipe tag: %w", err)
		}
		byID[recipeID].Tags = append(byID[recipeID].Tags, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = db.Query(ctx, recipeIngredientsByRecipe, ids)
	if err != nil {
		return fmt.Errorf("loading recipe ingredients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var recipeID int64
		var ing Ingredient
		if err := rows.Scan(&recipeID, &ing.ID, &ing.UserID, &ing.Name); err != nil {
			return fmt.Errorf("scanning recipe ingredient: %w", err)
		}
		byID[recipeID].Ingredients = append(byID[recipeID].Ingredients, ing)
	}
	return rows.Err()
}
