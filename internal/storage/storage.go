// Package storage provides the small key/value stores the client persists its
// preferences and session identifiers in.
package storage

import (
	"context"
	"errors"
)

// Keys used by the client.
const (
	KeyLocale   = "locale"
	KeyMemoryID = "memoryId"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("storage: key not found")

// Store is a string key/value store. Implementations must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
