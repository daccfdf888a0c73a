package filestore

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 stores images in an S3-compatible bucket through the MinIO client.
type S3 struct {
	client *minio.Client
	bucket string
	host   string
}

var _ FileStore = (*S3)(nil)

type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// Host is the public base URL images are served from, e.g. a CDN or the
	// bucket endpoint itself.
	Host string
}

func NewS3(conf S3Config) (*S3, error) {
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(conf.AccessKey, conf.SecretKey, ""),
		Secure: conf.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating s3 client: %w", err)
	}
	return &S3{
		client: client,
		bucket: conf.Bucket,
		host:   conf.Host,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *S3) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket: %w", err)
	}
	return nil
}

func (s *S3) WriteRecipeImage(ctx context.Context, recipeID int64, suffix string, data []byte) (string, error) {
	objectName := recipeImagePath(recipeID, suffix)
	_, err := s.client.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: mime.TypeByExtension(suffix),
		})
	if err != nil {
		return "", fmt.Errorf("putting object %q: %w", objectName, err)
	}
	return path.Join(s.bucket, objectName), nil
}

func (s *S3) Delete(ctx context.Context, urlPath string) error {
	objectName := trimURLPathPrefix(urlPath, s.bucket)
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing object %q: %w", objectName, err)
	}
	return nil
}

func (s *S3) FileURL(urlPath string) string {
	return joinURL(s.host, urlPath)
}
