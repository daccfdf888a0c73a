package filestore

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/recipevault/recipevault/internal/fileserver"
)

// Local keeps images on disk below a base directory, served by a static
// file server under urlPathPrefix.
type Local struct {
	urlPathPrefix string
	host          string
	fs            *fileserver.FileServer
}

var _ FileStore = (*Local)(nil)

func NewLocal(baseDirectory, urlPathPrefix, host string) *Local {
	return &Local{
		urlPathPrefix: urlPathPrefix,
		host:          strings.TrimRight(host, "/"),
		fs:            fileserver.New(baseDirectory),
	}
}

func (l *Local) WriteRecipeImage(_ context.Context, recipeID int64, suffix string, data []byte) (string, error) {
	relPath := recipeImagePath(recipeID, suffix)
	if _, _, err := l.fs.Write(relPath, data); err != nil {
		return "", err
	}
	return strings.Trim(l.urlPathPrefix, "/") + "/" + relPath, nil
}

func (l *Local) Delete(_ context.Context, urlPath string) error {
	return l.fs.Delete(filepath.FromSlash(trimURLPathPrefix(urlPath, l.urlPathPrefix)))
}

func (l *Local) FileURL(urlPath string) string {
	return joinURL(l.host, urlPath)
}
