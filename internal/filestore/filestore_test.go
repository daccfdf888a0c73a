package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalWriteDeleteRoundTrip(t *testing.T) {
	baseDir := t.TempDir()
	store := NewLocal(baseDir, DefaultURLPrefix, "http://localhost:8080")
	ctx := context.Background()

	urlPath, err := store.WriteRecipeImage(ctx, 7, ".png", []byte("image bytes"))
	if err != nil {
		t.Fatalf("WriteRecipeImage() error = %v", err)
	}
	if urlPath != "files/recipes/7.png" {
		t.Errorf("unexpected url path %q", urlPath)
	}

	onDisk := filepath.Join(baseDir, "recipes", "7.png")
	data, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("expected image on disk at %s: %v", onDisk, err)
	}
	if string(data) != "image bytes" {
		t.Errorf("unexpected file contents %q", data)
	}

	if got := store.FileURL(urlPath); got != "http://localhost:8080/files/recipes/7.png" {
		t.Errorf("unexpected file url %q", got)
	}

	if err := store.Delete(ctx, urlPath); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Errorf("expected file removed, stat err = %v", err)
	}
}

func TestLocalDeleteMissingFile(t *testing.T) {
	store := NewLocal(t.TempDir(), DefaultURLPrefix, "http://localhost:8080")

	if err := store.Delete(context.Background(), "files/recipes/999.png"); err != nil {
		t.Errorf("deleting a missing file should not error, got %v", err)
	}
}

func TestLocalOverwrite(t *testing.T) {
	store := NewLocal(t.TempDir(), DefaultURLPrefix, "http://localhost:8080")
	ctx := context.Background()

	if _, err := store.WriteRecipeImage(ctx, 7, ".png", []byte("first")); err != nil {
		t.Fatalf("WriteRecipeImage() error = %v", err)
	}
	urlPath, err := store.WriteRecipeImage(ctx, 7, ".png", []byte("second"))
	if err != nil {
		t.Fatalf("WriteRecipeImage() error = %v", err)
	}
	if urlPath != "files/recipes/7.png" {
		t.Errorf("unexpected url path %q", urlPath)
	}
}

func TestTrimURLPathPrefix(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		prefix string
		want   string
	}{
		{name: "leading slash", path: "/files/recipes/1.png", prefix: "/files", want: "recipes/1.png"},
		{name: "no leading slash", path: "files/recipes/1.png", prefix: "/files", want: "recipes/1.png"},
		{name: "no prefix present", path: "recipes/1.png", prefix: "/files", want: "recipes/1.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimURLPathPrefix(tt.path, tt.prefix); got != tt.want {
				t.Errorf("trimURLPathPrefix(%q, %q) = %q, want %q", tt.path, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		name string
		host string
		path string
		want string
	}{
		{name: "trailing slash on host", host: "http://localhost/", path: "/files/a.png", want: "http://localhost/files/a.png"},
		{name: "bare path", host: "http://localhost", path: "files/a.png", want: "http://localhost/files/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinURL(tt.host, tt.path); got != tt.want {
				t.Errorf("joinURL(%q, %q) = %q, want %q", tt.host, tt.path, got, tt.want)
			}
		})
	}
}
