package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrStorageFailed indicates neither the remote nor the local path could
// persist the blob.
var ErrStorageFailed = errors.New("all storage methods failed")

// Method tags which storage path served a blob.
type Method string

const (
	// MethodRemote means the blob lives in the remote object-storage bucket.
	MethodRemote Method = "remote"
	// MethodLocal means the blob lives on the local filesystem.
	MethodLocal Method = "local"
)

// File is an in-memory upload handed to the adapter.
type File struct {
	Name     string
	MimeType string
	Size     int64
	Bytes    []byte
}

// StoredFile references a durably stored blob. Key is retained so the blob
// can be deleted later.
type StoredFile struct {
	URL    string
	Method Method
	Key    string
}

// RemoteStore abstracts the remote object-storage service.
type RemoteStore interface {
	Upload(ctx context.Context, key string, reader io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// Adapter stores blobs remotely when a remote store is configured, falling
// back to local disk otherwise or whenever the remote path errors. It either
// returns a retrievable URL plus the method that served it, or an error; it
// never returns a partially written reference.
type Adapter struct {
	remote RemoteStore
	local  *LocalStore
	logger zerolog.Logger
}

// NewAdapter constructs the storage adapter. remote may be nil when the
// remote service is unconfigured; local is required.
func NewAdapter(remote RemoteStore, local *LocalStore, logger zerolog.Logger) (*Adapter, error) {
	if local == nil {
		return nil, fmt.Errorf("local store must be provided")
	}

	return &Adapter{
		remote: remote,
		local:  local,
		logger: logger.With().Str("component", "storage_adapter").Logger(),
	}, nil
}

// Store persists the file under {folder}/{keyPrefix}_{timestamp}_{name} and
// returns where it ended up.
func (a *Adapter) Store(ctx context.Context, file File, folder, keyPrefix string) (StoredFile, error) {
	if len(file.Bytes) == 0 {
		return StoredFile{}, fmt.Errorf("file payload must not be empty")
	}

	key := buildKey(folder, keyPrefix, file.Name)

	if a.remote != nil {
		url, err := a.remote.Upload(ctx, key, bytes.NewReader(file.Bytes))
		if err == nil {
			a.logger.Info().Str("key", key).Str("method", string(MethodRemote)).Msg("file stored")
			return StoredFile{URL: url, Method: MethodRemote, Key: key}, nil
		}
		a.logger.Warn().Err(err).Str("key", key).Msg("remote storage failed, falling back to local")
	}

	url, err := a.local.Write(key, file.Bytes)
	if err != nil {
		return StoredFile{}, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	a.logger.Info().Str("key", key).Str("method", string(MethodLocal)).Msg("file stored")

	return StoredFile{URL: url, Method: MethodLocal, Key: key}, nil
}

// Delete removes a stored blob via whichever path stored it.
func (a *Adapter) Delete(ctx context.Context, stored StoredFile) error {
	switch stored.Method {
	case MethodRemote:
		if a.remote == nil {
			return fmt.Errorf("remote storage not configured")
		}
		return a.remote.Delete(ctx, stored.Key)
	case MethodLocal:
		return a.local.Remove(stored.Key)
	default:
		return fmt.Errorf("unknown storage method %q", stored.Method)
	}
}

func buildKey(folder, keyPrefix, name string) string {
	return fmt.Sprintf("%s/%s_%d_%s",
		strings.Trim(folder, "/"),
		sanitizeSegment(keyPrefix),
		time.Now().Unix(),
		sanitizeFileName(name),
	)
}

// sanitizeSegment flattens registration numbers like "CS/001/2021" into a
// single key segment.
func sanitizeSegment(segment string) string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, segment)

	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "upload"
	}

	return cleaned
}

func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = "file"
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}

	return base + ext
}
