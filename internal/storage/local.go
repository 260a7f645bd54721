package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// LocalStore writes blobs under a directory tree mirroring their keys and
// serves them back at a relative URL below baseURL.
type LocalStore struct {
	baseDir string
	baseURL string
	logger  zerolog.Logger
}

// NewLocalStore constructs a local disk store rooted at baseDir. The
// directory is created if absent.
func NewLocalStore(baseDir, baseURL string, logger zerolog.Logger) (*LocalStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("local storage directory must be provided")
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	if baseURL == "" {
		baseURL = "/uploads"
	}

	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

// Write persists the payload under key, creating intermediate directories,
// and returns the relative serving URL.
func (l *LocalStore) Write(key string, payload []byte) (string, error) {
	rel := filepath.FromSlash(strings.Trim(key, "/"))
	dst := filepath.Join(l.baseDir, rel)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	if err := os.WriteFile(dst, payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", key, err)
	}

	url := l.baseURL + "/" + path.Clean(strings.Trim(key, "/"))
	l.logger.Info().Str("key", key).Str("url", url).Msg("file written to local storage")

	return url, nil
}

// Remove deletes the blob stored under key. A missing file is not an error.
func (l *LocalStore) Remove(key string) error {
	dst := filepath.Join(l.baseDir, filepath.FromSlash(strings.Trim(key, "/")))

	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}

	return nil
}
