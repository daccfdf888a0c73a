package database

import "context"

// Querier is the storage surface the API handlers depend on. Every query is
// scoped to an owning user: a row that exists but belongs to someone else is
// reported exactly like a missing row (pgx.ErrNoRows).
type Querier interface {
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error)

	CreateRecipe(ctx context.Context, arg CreateRecipeParams) (Recipe, error)
	GetRecipe(ctx context.Context, arg GetRecipeParams) (Recipe, error)
	ListRecipes(ctx context.Context, arg ListRecipesParams) ([]Recipe, error)
	UpdateRecipe(ctx context.Context, arg UpdateRecipeParams) (Recipe, error)
	DeleteRecipe(ctx context.Context, arg DeleteRecipeParams) error
	UpdateRecipeImage(ctx context.Context, arg UpdateRecipeImageParams) (Recipe, error)

	CreateTag(ctx context.Context, arg CreateTagParams) (Tag, error)
	ListTags(ctx context.Context, arg ListTagsParams) ([]Tag, error)
	UpdateTag(ctx context.Context, arg UpdateTagParams) (Tag, error)
	DeleteTag(ctx context.Context, arg DeleteTagParams) error

	CreateIngredient(ctx context.Context, arg CreateIngredientParams) (Ingredient, error)
	ListIngredients(ctx context.Context, arg ListIngredientsParams) ([]Ingredient, error)
	UpdateIngredient(ctx context.Context, arg UpdateIngredientParams) (Ingredient, error)
	DeleteIngredient(ctx context.Context, arg DeleteIngredientParams) error
}

type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
}

type UpdateUserParams struct {
	ID           int64
	Name         *string
	PasswordHash *string
}

// NameRef identifies a tag or ingredient by name within the owner's
// namespace. Attaching resolves it with get-or-create semantics.
type NameRef struct {
	Name string
}

type CreateRecipeParams struct {
	UserID      int64
	Title       string
	TimeMinutes int32
	Price       string
	Link        *string
	Description *string
	Tags        []NameRef
	Ingredients []NameRef
}

type GetRecipeParams struct {
	ID     int64
	UserID int64
}

type ListRecipesParams struct {
	UserID        int64
	TagIDs        []int64
	IngredientIDs []int64
}

// UpdateRecipeParams applies a partial update. Nil scalar pointers leave the
// column alone. Nil Tags/Ingredients leave the associations alone; a non-nil
// empty slice clears them.
type UpdateRecipeParams struct {
	ID          int64
	UserID      int64
	Title       *string
	TimeMinutes *int32
	Price       *string
	Link        *string
	Description *string
	Tags        *[]NameRef
	Ingredients *[]NameRef
}

type DeleteRecipeParams struct {
	ID     int64
	UserID int64
}

type UpdateRecipeImageParams struct {
	ID       int64
	UserID   int64
	ImageURL string
}

type CreateTagParams struct {
	UserID int64
	Name   string
}

type ListTagsParams struct {
	UserID       int64
	AssignedOnly bool
}

type UpdateTagParams struct {
	ID     int64
	UserID int64
	Name   string
}

type DeleteTagParams struct {
	ID     int64
	UserID int64
}

type CreateIngredientParams struct {
	UserID int64
	Name   string
}

type ListIngredientsParams struct {
	UserID       int64
	AssignedOnly bool
}

type UpdateIngredientParams struct {
	ID     int64
	UserID int64
	Name   string
}

type DeleteIngredientParams struct {
	ID     int64
	UserID int64
}
