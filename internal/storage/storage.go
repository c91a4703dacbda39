// Package storage defines the key/value contract snapshot backends implement.
package storage

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when no value is stored under a key.
var ErrNotFound = errors.New("storage: key not found")

// ErrInvalidKey is returned for empty keys.
var ErrInvalidKey = errors.New("storage: key is required")

// Store is a string key/value store. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// CleanKey trims surrounding whitespace and rejects empty keys.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", ErrInvalidKey
	}
	return key, nil
}
