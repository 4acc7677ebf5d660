// Package storage holds uploaded media: marketplace ad photos and user
// avatars. Implementations cover the local filesystem for development and an
// S3-compatible object store for production.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/lanternfox/storefront/internal"
)

// Storage defines the interface for media storage operations.
type Storage interface {
	// Put stores a file and returns its public URL.
	// The key should be a unique identifier (e.g., "ad-images/uuid.jpg").
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)

	// Get retrieves a file by its key.
	// Returns an io.ReadCloser that must be closed by the caller.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file by its key.
	// Returns nil if the file doesn't exist (idempotent).
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for accessing a stored file.
	URL(key string) string

	// Exists checks if a file exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)
}

// NewStorage creates a Storage implementation for one bucket based on
// configuration. The local provider ignores the bucket and separates media
// kinds by key prefix instead.
func NewStorage(cfg internal.StorageConfig, bucket string) (Storage, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
	case "s3":
		return NewObjectStorage(ObjectConfig{
			AccountID:   cfg.S3AccountID,
			AccessKeyID: cfg.S3AccessKeyID,
			SecretKey:   cfg.S3SecretKey,
			BucketName:  bucket,
			PublicURL:   cfg.PublicURL,
		})
	default:
		return nil, ErrUnknownProvider(cfg.Provider)
	}
}

// Key prefixes group media by kind inside one bucket.
const (
	PrefixAdImages = "ad-images"
	PrefixAvatars  = "avatars"
)

// AdImageKey builds a fresh, collision-free key for an ad photo, keeping the
// original file extension.
func AdImageKey(filename string) string {
	return path.Join(PrefixAdImages, uuid.New().String()+ext(filename))
}

// AvatarKey builds the key for a user's avatar. The key is stable per user,
// so a new upload replaces the previous one; callers bust caches with a
// version query parameter on the URL.
func AvatarKey(userID, filename string) string {
	return path.Join(PrefixAvatars, userID+ext(filename))
}

func ext(filename string) string {
	e := strings.ToLower(path.Ext(filename))
	if e == "" {
		return ".jpg"
	}
	return e
}
