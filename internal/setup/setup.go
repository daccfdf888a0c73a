// Package setup is responsible for setting up components.
package setup

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/recipevault/recipevault/internal/config"
	"github.com/recipevault/recipevault/internal/database"
	"github.com/recipevault/recipevault/internal/filestore"
)

// Database connects a pgx pool and applies the schema when missing.
func Database(ctx context.Context, conf *config.Config) (*database.Database, error) {
	pool, err := pgxpool.New(ctx, conf.Database.URL())
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	db := database.NewDatabase(pool)
	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	return db, nil
}

// FileStore builds the configured image storage backend.
func FileStore(ctx context.Context, conf *config.Config) (filestore.FileStore, error) {
	switch conf.Filestore.Backend {
	case "s3":
		s3, err := filestore.NewS3(filestore.S3Config{
			Endpoint:  conf.Filestore.S3.Endpoint,
			Bucket:    conf.Filestore.S3.Bucket,
			AccessKey: conf.Filestore.S3.AccessKey,
			SecretKey: conf.Filestore.S3.SecretKey,
			UseSSL:    conf.Filestore.S3.UseSSL,
			Host:      conf.HostOrigin,
		})
		if err != nil {
			return nil, fmt.Errorf("creating s3 filestore: %w", err)
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensuring s3 bucket: %w", err)
		}
		return s3, nil
	default:
		volume, err := filepath.Abs(conf.Filestore.Volume)
		if err != nil {
			return nil, fmt.Errorf("resolving filestore volume: %w", err)
		}
		return filestore.NewLocal(volume, conf.Filestore.URLPrefix, conf.HostOrigin), nil
	}
}
