package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"elearning/apperr"
)

// LocalStorage writes objects below a directory served as static files.
type LocalStorage struct {
	dir     string
	baseURL string
}

func NewLocalStorage(dir, baseURL string) *LocalStorage {
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", apperr.Validation("Invalid object key", apperr.Ctx("key", key))
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

func (s *LocalStorage) Upload(_ context.Context, key string, body []byte, _ string) (string, error) {
	filePath, err := s.path(key)
	if err != nil {
		return "", err
	}

	// Create destination directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", apperr.Internal("Failed to store file", err, apperr.Ctx("key", key))
	}
	if err := os.WriteFile(filePath, body, 0644); err != nil {
		return "", apperr.Internal("Failed to store file", err, apperr.Ctx("key", key))
	}
	return s.baseURL + "/" + strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+key)), "/"), nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	filePath, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Internal("Failed to delete file", err, apperr.Ctx("key", key))
	}
	return nil
}
