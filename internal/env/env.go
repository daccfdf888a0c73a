// Package env provides a structure for managing application-wide dependencies.
package env

import (
	"context"
	"log/slog"
	"os"

	"github.com/recipevault/recipevault/internal/database"
	"github.com/recipevault/recipevault/internal/filestore"
	"github.com/recipevault/recipevault/internal/log"
)

type Env struct {
	Logger    *slog.Logger
	Database  *database.Database
	FileStore filestore.FileStore

	vars map[string]string
}

// New builds an Env with a discarding logger and the given variable
// overrides. Dependencies are assigned by the caller.
func New(vars map[string]string) *Env {
	return &Env{
		Logger: log.NullLogger(),
		vars:   vars,
	}
}

// Get returns the override for key if one was provided, falling back to the
// process environment.
func (e *Env) Get(key string) string {
	if v, ok := e.vars[key]; ok {
		return v
	}
	return os.Getenv(key)
}

type envKeyType struct{}

var envKey envKeyType

func WithCtx(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, envKey, env)
}

// EnvFromCtx extracts the Env from the context. A null Env is returned when
// none was injected so callers can always log.
func EnvFromCtx(ctx context.Context) *Env {
	if e, ok := ctx.Value(envKey).(*Env); ok {
		return e
	}
	return New(nil)
}
