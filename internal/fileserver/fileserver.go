// Package fileserver contains utilities for writing files to local disk.
package fileserver

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	directoryPerms = 0o755
)

type FileServer struct {
	baseDir string
}

func New(baseDir string) *FileServer {
	return &FileServer{
		baseDir: baseDir,
	}
}

func (f *FileServer) BaseDirectory() string {
	if f == nil {
		return ""
	}
	return f.baseDir
}

// Write stores data at path below the base directory, creating parent
// directories as needed. Returns the full path written.
func (f *FileServer) Write(path string, data []byte) (fullpath string, n int, err error) {
	if f == nil {
		return "", 0, nil
	}

	fullpath = filepath.Join(f.baseDir, path)
	if err := os.MkdirAll(filepath.Dir(fullpath), directoryPerms); err != nil {
		return "", 0, fmt.Errorf("creating parent directories: %w", err)
	}

	file, err := os.Create(fullpath)
	if err != nil {
		return "", 0, fmt.Errorf("creating file: %w", err)
	}
	defer func() { _ = file.Close() }()

	n, err = file.Write(data)
	if err != nil {
		return "", 0, fmt.Errorf("writing file: %w", err)
	}

	return fullpath, n, nil
}

func (f *FileServer) Exists(path string) (bool, error) {
	if f == nil {
		return false, nil
	}
	_, err := os.Stat(filepath.Join(f.baseDir, path))
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

func (f *FileServer) Delete(path string) error {
	if f == nil {
		return nil
	}
	if err := os.Remove(filepath.Join(f.baseDir, path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}
