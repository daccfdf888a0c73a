// Package filestore stores recipe images behind a backend-agnostic interface.
package filestore

import (
	"context"
	"fmt"
	"path"
	"strings"
)

const (
	recipesDir = "recipes"
)

const (
	DefaultURLPrefix = "/files"
)

// FileStore persists recipe images. Write returns the URL path recorded on
// the recipe row; FileURL turns that path into an absolute URL for clients.
type FileStore interface {
	WriteRecipeImage(ctx context.Context, recipeID int64, suffix string, data []byte) (urlPath string, err error)
	Delete(ctx context.Context, urlPath string) error
	FileURL(urlPath string) string
}

func recipeImagePath(recipeID int64, suffix string) string {
	return path.Join(recipesDir, fmt.Sprintf("%d%s", recipeID, suffix))
}

func joinURL(host, urlPath string) string {
	return strings.TrimRight(host, "/") + "/" + strings.TrimLeft(urlPath, "/")
}

func trimURLPathPrefix(urlPath, prefix string) string {
	p := strings.Trim(urlPath, "/")
	p = strings.TrimPrefix(p, strings.Trim(prefix, "/"))
	return strings.TrimLeft(p, "/")
}
