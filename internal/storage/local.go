package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultMediaDir = "./media"
	DefaultMediaURL = "/media"
)

// LocalStore writes images under baseDir; they are served by the HTTP
// server under urlBase.
type LocalStore struct {
	baseDir string
	urlBase string
}

func NewLocalStore(baseDir, urlBase string) *LocalStore {
	if baseDir == "" {
		baseDir = DefaultMediaDir
	}
	if urlBase == "" {
		urlBase = DefaultMediaURL
	}
	return &LocalStore{baseDir: baseDir, urlBase: strings.TrimRight(urlBase, "/")}
}

func (s *LocalStore) BaseDir() string { return s.baseDir }
func (s *LocalStore) URLBase() string { return s.urlBase }

func (s *LocalStore) Save(_ context.Context, data []byte, _ string, ext string) (string, error) {
	key := objectKey(time.Now(), ext)
	absPath := filepath.Join(s.baseDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		_ = os.Remove(absPath)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return s.urlBase + "/" + key, nil
}

// Delete removes the file behind url. URLs outside urlBase and files that are
// already gone are ignored.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.urlBase+"/")
	if !ok {
		return nil
	}
	key = path.Clean("/" + key)[1:]
	if key == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
