// Package ingredients contains handlers for the ingredient endpoints.
package ingredients

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
	mJson "github.com/recipevault/recipevault/internal/json"
	"github.com/recipevault/recipevault/internal/validate"
)

type IngredientResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

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

// HandleListIngredients lists the caller's ingredients, newest names first.
// With assigned_only set, only ingredients used by at least one recipe
// appear, each once.
func HandleListIngredients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "listing ingredients")
	ingredients, err := env.Database.ListIngredients(ctx, database.ListIngredientsParams{
		UserID:       userID,
		AssignedOnly: assignedOnly(r.URL.Query().Get("assigned_only")),
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to list ingredients", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	resp := make([]IngredientResponse, 0, len(ingredients))
	for _, ingredient := range ingredients {
		resp = append(resp, IngredientResponse{ID: ingredient.ID, Name: ingredient.Name})
	}
	encodeJSON(ctx, w, http.StatusOK, resp)
}

// HandleCreateIngredient creates an ingredient owned by the caller.
func HandleCreateIngredient(w http.ResponseWriter, r *http.Request) {
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
	var request IngredientRequest
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

	env.Logger.DebugContext(ctx, "creating ingredient")
	ingredient, err := env.Database.CreateIngredient(ctx, database.CreateIngredientParams{
		UserID: userID,
		Name:   request.Name,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to create ingredient", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusCreated, IngredientResponse{ID: ingredient.ID, Name: ingredient.Name})
}

// HandleUpdateIngredient renames one of the caller's ingredients. PUT and
// PATCH behave identically since name is the only writable field.
func HandleUpdateIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id := ingredientID(chi.URLParam(r, "ingredientID"))
	if err := id.Validate(); err != nil {
		env.Logger.ErrorContext(ctx, "failed to validate ingredient id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "bad request", requestID)
		return
	}

	// Decode JSON
	var request IngredientRequest
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

	env.Logger.DebugContext(ctx, "updating ingredient")
	ingredient, err := env.Database.UpdateIngredient(ctx, database.UpdateIngredientParams{
		ID:     id.Int64(),
		UserID: userID,
		Name:   request.Name,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "ingredient does not exist for user", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.IngredientNotFound, "ingredient not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to update ingredient", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusOK, IngredientResponse{ID: ingredient.ID, Name: ingredient.Name})
}

// HandleDeleteIngredient deletes one of the caller's ingredients and detaches
// it from any recipes that referenced it.
func HandleDeleteIngredient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id := ingredientID(chi.URLParam(r, "ingredientID"))
	if err := id.Validate(); err != nil {
		env.Logger.ErrorContext(ctx, "failed to validate ingredient id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "bad request", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "deleting ingredient")
	err = env.Database.DeleteIngredient(ctx, database.DeleteIngredientParams{
		ID:     id.Int64(),
		UserID: userID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "ingredient does not exist for user", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.IngredientNotFound, "ingredient not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to delete ingredient", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
