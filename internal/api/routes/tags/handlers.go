// Package tags contains handlers for the tag endpoints.
package tags

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

type TagResponse struct {
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

// HandleListTags lists the caller's tags, newest names first. With
// assigned_only set, only tags attached to at least one recipe appear,
// each once.
func HandleListTags(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "listing tags")
	tags, err := env.Database.ListTags(ctx, database.ListTagsParams{
		UserID:       userID,
		AssignedOnly: assignedOnly(r.URL.Query().Get("assigned_only")),
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to list tags", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	resp := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		resp = append(resp, TagResponse{ID: tag.ID, Name: tag.Name})
	}
	encodeJSON(ctx, w, http.StatusOK, resp)
}

// HandleCreateTag creates a tag owned by the caller.
func HandleCreateTag(w http.ResponseWriter, r *http.Request) {
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
	var request TagRequest
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

	env.Logger.DebugContext(ctx, "creating tag")
	tag, err := env.Database.CreateTag(ctx, database.CreateTagParams{
		UserID: userID,
		Name:   request.Name,
	})
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to create tag", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusCreated, TagResponse{ID: tag.ID, Name: tag.Name})
}

// HandleUpdateTag renames one of the caller's tags. PUT and PATCH behave
// identically since name is the only writable field.
func HandleUpdateTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id := tagID(chi.URLParam(r, "tagID"))
	if err := id.Validate(); err != nil {
		env.Logger.ErrorContext(ctx, "failed to validate tag id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "bad request", requestID)
		return
	}

	// Decode JSON
	var request TagRequest
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

	env.Logger.DebugContext(ctx, "updating tag")
	tag, err := env.Database.UpdateTag(ctx, database.UpdateTagParams{
		ID:     id.Int64(),
		UserID: userID,
		Name:   request.Name,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "tag does not exist for user", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.TagNotFound, "tag not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to update tag", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusOK, TagResponse{ID: tag.ID, Name: tag.Name})
}

// HandleDeleteTag deletes one of the caller's tags and detaches it from any
// recipes that referenced it.
func HandleDeleteTag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	id := tagID(chi.URLParam(r, "tagID"))
	if err := id.Validate(); err != nil {
		env.Logger.ErrorContext(ctx, "failed to validate tag id", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.BadRequest, "bad request", requestID)
		return
	}

	env.Logger.DebugContext(ctx, "deleting tag")
	err = env.Database.DeleteTag(ctx, database.DeleteTagParams{
		ID:     id.Int64(),
		UserID: userID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "tag does not exist for user", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.TagNotFound, "tag not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to delete tag", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
