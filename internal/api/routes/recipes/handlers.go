// Package recipes contains handlers for the recipe endpoints.
package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	apiError "github.com/recipevault/recipevault/internal/api/error"
	"github.com/recipevault/recipevault/internal/api/requestid"
	"github.com/recipevault/recipevault/internal/api/token"
	"github.com/recipevault/recipevault/internal/database"
	"github.com/recipevault/recipevault/internal/env"
	"github.com/recipevault/recipevault/internal/form"
	mJson "github.com/recipevault/recipevault/internal/json"
	"github.com/recipevault/recipevault/internal/validate"
)

func encodeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	e := env.EnvFromCtx(ctx)
	resp, err := json.Marshal(v)
	if err != nil {
		e.Logger.ErrorContext(ctx, "failed to marshal response", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, strconv.FormatUint(requestid.ExtractRequestID(ctx), 10))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(resp); err != nil {
		e.Logger.ErrorContext(ctx, "failed to write response", slog.Any("error", err))
	}
}

// HandleListRecipes lists the caller's recipes, optionally narrowed by the
// `tags` and `ingredient` comma-separated id filters.
func HandleListRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Parse filters
	tagIDs, err := csvInt64s(r.URL.Query().Get("tags"))
	if err != nil {
		env.Logger.ErrorContext(ctx, "invalid tags filter", slog.Any("error", err))
		_ = apiError.EncodeValidationError(w, map[string][]string{"tags": {err.Error()}}, requestID)
		return
	}
	ingredientIDs, err := csvInt64s(r.URL.Query().Get("ingredient"))
	if err != nil {
		env.Logger.ErrorContext(ctx, "invalid ingredient filter", slog.Any("error", err))
		_ = apiError.EncodeValidationError(w, map[string][]string{"ingredient": {err.Error()}}, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "listing recipes")
	recipes, err := env.Database.ListRecipes(ctx, database.ListRecipesParams{
		UserID:        userID,
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to list recipes", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	resp := make([]RecipeSummary, 0, len(recipes))
	for _, recipe := range recipes {
		resp = append(resp, newRecipeSummary(recipe))
	}
	encodeJSON(ctx, w, http.StatusOK, resp)
}

// HandleCreateRecipe creates a recipe for the caller. Embedded tag and
// ingredient names resolve with get-or-create semantics in one transaction.
func HandleCreateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Decode JSON
	var request CreateRecipeRequest
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := mJson.DecodeJSON(&request, decoder); err != nil {
		env.Logger.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}
	if fields, err := validate.Struct(request); err != nil {
		env.Logger.ErrorContext(ctx, "failed to validate request body", slog.Any("error", err))
		_ = apiError.EncodeValidationError(w, fields, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "creating recipe")
	recipe, err := env.Database.CreateRecipe(ctx, database.CreateRecipeParams{
		UserID:      userID,
		Title:       request.Title,
		TimeMinutes: *request.TimeMinutes,
		Price:       request.Price,
		Link:        request.Link,
		Description: request.Description,
		Tags:        tagRefs(request.Tags),
		Ingredients: ingredientRefs(request.Ingredients),
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to create recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusCreated, newRecipeDetail(env, recipe))
}

// HandleGetRecipe retrieves one of the caller's recipes. A recipe owned by
// someone else is indistinguishable from a missing one.
func HandleGetRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id := recipeID(chi.URLParam(r, "recipeID"))
	if err := id.Validate(); err != nil {
		env.Logger.ErrorContext(ctx, "failed to validate recipe id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "bad request", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "getting recipe")
	recipe, err := env.Database.GetRecipe(ctx, database.GetRecipeParams{
		ID:     id.Int64(),
		UserID: userID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "recipe does not exist for user", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to get recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusOK, newRecipeDetail(env, recipe))
}

// HandleReplaceRecipe handles PUT: every writable field is required and the
// tag/ingredient associations are replaced, defaulting to none when omitted.
func HandleReplaceRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id := recipeID(chi.URLParam(r, "recipeID"))
	if err := id.Validate(); err != nil {
		env.Logger.ErrorContext(ctx, "failed to validate recipe id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "bad request", requestID)
		return
	}

	// Decode JSON
	var request CreateRecipeRequest
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := mJson.DecodeJSON(&request, decoder); err != nil {
		env.Logger.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}
	if fields, err := validate.Struct(request); err != nil {
		env.Logger.ErrorContext(ctx, "failed to validate request body", slog.Any("error", err))
		_ = apiError.EncodeValidationError(w, fields, requestID)
		return
	}

	tags := tagRefs(request.Tags)
	ingredients := ingredientRefs(request.Ingredients)

	env.Logger.DebugContext(ctx, "replacing recipe")
	recipe, err := env.Database.UpdateRecipe(ctx, database.UpdateRecipeParams{
		ID:          id.Int64(),
		UserID:      userID,
		Title:       &request.Title,
		TimeMinutes: request.TimeMinutes,
		Price:       &request.Price,
		Link:        request.Link,
		Description: request.Description,
		Tags:        &tags,
		Ingredients: &ingredients,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "recipe does not exist for user", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to replace recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusOK, newRecipeDetail(env, recipe))
}

// HandlePatchRecipe handles PATCH: only the provided keys change. A tags or
// ingredients key that is present replaces those associations; an absent key
// leaves them untouched.
func HandlePatchRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id := recipeID(chi.URLParam(r, "recipeID"))
	if err := id.Validate(); err != nil {
		env.Logger.ErrorContext(ctx, "failed to validate recipe id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "bad request", requestID)
		return
	}

	// Decode JSON
	var request UpdateRecipeRequest
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := mJson.DecodeJSON(&request, decoder); err != nil {
		env.Logger.ErrorContext(ctx, "failed to decode request body", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "invalid request body", requestID)
		return
	}
	if fields, err := validate.Struct(request); err != nil {
		env.Logger.ErrorContext(ctx, "failed to validate request body", slog.Any("error", err))
		_ = apiError.EncodeValidationError(w, fields, requestID)
		return
	}

	params := database.UpdateRecipeParams{
		ID:          id.Int64(),
		UserID:      userID,
		Title:       request.Title,
		TimeMinutes: request.TimeMinutes,
		Price:       request.Price,
		Link:        request.Link,
		Description: request.Description,
	}
	if request.Tags != nil {
		tags := tagRefs(*request.Tags)
		params.Tags = &tags
	}
	if request.Ingredients != nil {
		ingredients := ingredientRefs(*request.Ingredients)
		params.Ingredients = &ingredients
	}

	env.Logger.DebugContext(ctx, "updating recipe")
	recipe, err := env.Database.UpdateRecipe(ctx, params)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "recipe does not exist for user", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to update recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusOK, newRecipeDetail(env, recipe))
}

// HandleDeleteRecipe deletes one of the caller's recipes. Shared tags and
// ingredients are left in place.
func HandleDeleteRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id := recipeID(chi.URLParam(r, "recipeID"))
	if err := id.Validate(); err != nil {
		env.Logger.ErrorContext(ctx, "failed to validate recipe id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "bad request", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "deleting recipe")
	err = env.Database.DeleteRecipe(ctx, database.DeleteRecipeParams{
		ID:     id.Int64(),
		UserID: userID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "recipe does not exist for user", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to delete recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadImage attaches a single image to one of the caller's recipes.
func HandleUploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id := recipeID(chi.URLParam(r, "recipeID"))
	if err := id.Validate(); err != nil {
		env.Logger.ErrorContext(ctx, "failed to validate recipe id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "bad request", requestID)
		return
	}

	// Read image
	r.Body = http.MaxBytesReader(w, r.Body, form.MaximumUploadSize)
	if err := r.ParseMultipartForm(form.MaximumUploadSize); err != nil {
		env.Logger.ErrorContext(ctx, "failed to parse multipart form", slog.Any("error", err))
		_ = apiError.EncodeValidationError(w,
			map[string][]string{"image": {"expected a multipart form with an image"}}, requestID)
		return
	}
	uploadedImage, err := form.ReadImage(r, "image")
	if errors.Is(err, form.ErrNoImageUploaded) {
		env.Logger.ErrorContext(ctx, "no image uploaded", slog.Any("error", err))
		_ = apiError.EncodeValidationError(w,
			map[string][]string{"image": {"no image submitted"}}, requestID)
		return
	} else if errors.Is(err, form.ErrUnsupportedMimeType) {
		env.Logger.ErrorContext(ctx, "unsupported file type", slog.Any("error", err))
		_ = apiError.EncodeValidationError(w,
			map[string][]string{"image": {"unsupported image type"}}, requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to read image", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Check ownership and fetch current image
	env.Logger.DebugContext(ctx, "getting recipe")
	recipe, err := env.Database.GetRecipe(ctx, database.GetRecipeParams{
		ID:     id.Int64(),
		UserID: userID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "recipe does not exist for user", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.RecipeNotFound, "recipe not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to get recipe", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	// Delete old image
	if recipe.ImageURL.Valid && recipe.ImageURL.String != "" {
		env.Logger.DebugContext(ctx, "deleting old image", slog.String("path", recipe.ImageURL.String))
		if err := env.FileStore.Delete(ctx, recipe.ImageURL.String); err != nil {
			env.Logger.WarnContext(ctx, "failed to delete old image", slog.Any("error", err))
		}
	}

	// Write new image
	env.Logger.DebugContext(ctx, "writing image")
	urlPath, err := env.FileStore.WriteRecipeImage(ctx, recipe.ID, uploadedImage.Suffix, uploadedImage.Data)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to write image", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "updating image in database")
	updated, err := env.Database.UpdateRecipeImage(ctx, database.UpdateRecipeImageParams{
		ID:       recipe.ID,
		UserID:   userID,
		ImageURL: urlPath,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to update recipe image", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusOK, newRecipeDetail(env, updated))
}
