// Package users contains handlers for account registration, login, and the
// authenticated profile endpoints.
package users

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apiError "github.com/recipevault/recipevault/internal/api/error"
	"github.com/recipevault/recipevault/internal/api/requestid"
	"github.com/recipevault/recipevault/internal/api/token"
	"github.com/recipevault/recipevault/internal/argon2id"
	"github.com/recipevault/recipevault/internal/database"
	"github.com/recipevault/recipevault/internal/env"
	mJson "github.com/recipevault/recipevault/internal/json"
	"github.com/recipevault/recipevault/internal/jwt"
	"github.com/recipevault/recipevault/internal/password"
	"github.com/recipevault/recipevault/internal/validate"
)

const uniqueViolationCode = "23505"

type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type TokenResponse struct {
	Token string `json:"token"`
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

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// HandleCreateUser registers a new account. The password is checked against
// the strength rules before hashing and never leaves the handler.
func HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	// Decode JSON
	var request CreateUserRequest
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
	if err := password.ValidatePassword(request.Password); err != nil {
		env.Logger.ErrorContext(ctx, "password failed strength check", slog.Any("error", err))
		_ = apiError.EncodeValidationError(w,
			map[string][]string{"password": {err.Error()}}, requestID)
		return
	}

	hash, err := argon2id.EncodeHash(request.Password, argon2id.DefaultParams)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	env.Logger.DebugContext(ctx, "creating user")
	user, err := env.Database.CreateUser(ctx, database.CreateUserParams{
		Email:        request.Email,
		Name:         request.Name,
		PasswordHash: hash,
	})
	if isUniqueViolation(err) {
		env.Logger.ErrorContext(ctx, "email already registered", slog.Any("error", err))
		_ = apiError.EncodeValidationError(w,
			map[string][]string{"email": {"a user with this email already exists"}}, requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusCreated, UserResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

// HandleCreateToken exchanges email and password for an access token. Wrong
// email and wrong password produce the same response.
func HandleCreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)

	// Decode JSON
	var request CreateTokenRequest
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

	user, err := env.Database.GetUserByEmail(ctx, request.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "unknown email", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.InvalidCredentials, "invalid credentials", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	match, err := argon2id.ComparePassword(request.Password, user.PasswordHash)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to compare password", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}
	if !match {
		env.Logger.ErrorContext(ctx, "password mismatch")
		_ = apiError.EncodeError(w, apiError.InvalidCredentials, "invalid credentials", requestID)
		return
	}

	accessToken, err := token.NewAccessToken(jwt.JWTParams{UserID: strconv.FormatInt(user.ID, 10)}, env)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusOK, TokenResponse{Token: accessToken})
}

// HandleGetMe returns the caller's profile.
func HandleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	env := env.EnvFromCtx(ctx)
	requestID := strconv.FormatUint(requestid.ExtractRequestID(ctx), 10)
	userID, err := token.UserIDFromCtx(ctx)
	if err != nil {
		env.Logger.ErrorContext(ctx, "failed to extract user id from context", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	user, err := env.Database.GetUserByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "user does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusOK, UserResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

// HandleUpdateMe updates the caller's name or password. A new password goes
// through the same strength rules as registration.
func HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
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
	var request UpdateMeRequest
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

	params := database.UpdateUserParams{ID: userID, Name: request.Name}
	if request.Password != nil {
		if err := password.ValidatePassword(*request.Password); err != nil {
			env.Logger.ErrorContext(ctx, "password failed strength check", slog.Any("error", err))
			_ = apiError.EncodeValidationError(w,
				map[string][]string{"password": {err.Error()}}, requestID)
			return
		}
		hash, err := argon2id.EncodeHash(*request.Password, argon2id.DefaultParams)
		if err != nil {
			env.Logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
			_ = apiError.EncodeInternalError(w, requestID)
			return
		}
		params.PasswordHash = &hash
	}

	env.Logger.DebugContext(ctx, "updating user")
	user, err := env.Database.UpdateUser(ctx, params)
	if errors.Is(err, pgx.ErrNoRows) {
		env.Logger.ErrorContext(ctx, "user does not exist", slog.Any("error", err))
		_ = apiError.EncodeError(w, apiError.UserNotFound, "user not found", requestID)
		return
	} else if err != nil {
		env.Logger.ErrorContext(ctx, "failed to update user", slog.Any("error", err))
		_ = apiError.EncodeInternalError(w, requestID)
		return
	}

	encodeJSON(ctx, w, http.StatusOK, UserResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}
