// Package token contains utilities for bearer access tokens.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/recipevault/recipevault/internal/env"
	"github.com/recipevault/recipevault/internal/jwt"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrMissingUser  = errors.New("no user id in context")
)

// NewAccessToken signs a short-lived JWT for the given user.
func NewAccessToken(params jwt.JWTParams, env *env.Env) (string, error) {
	secret := env.Get("APP_SECRET")
	if secret == "" {
		return "", errors.New("environment variable APP_SECRET not defined")
	}
	version := env.Get("APP_SECRET_VERSION")
	if version == "" {
		version = jwt.DefaultKID
	}
	token, err := jwt.GenerateJWT(params, []byte(secret), version)
	if err != nil {
		return "", fmt.Errorf("generating access token: %w", err)
	}
	return token, nil
}

// FromHeader extracts the bearer token from the Authorization header.
func FromHeader(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", ErrMissingToken
	}
	return value, nil
}

type userIDKeyType struct{}

var userIDKey userIDKeyType

func UserIDWithCtx(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromCtx(ctx context.Context) (int64, error) {
	if v, ok := ctx.Value(userIDKey).(int64); ok {
		return v, nil
	}
	return 0, ErrMissingUser
}
