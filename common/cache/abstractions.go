package cache

import "errors"

// Cache is the storage contract behind the session store. Values never expire.
type Cache[T any] interface {
	// Get returns ErrKeyNotFound when nothing is stored under key.
	Get(key string) (T, error)

	Set(key string, value T) error

	// Delete ignores keys that are not present.
	Delete(keys ...string) error
}

var (
	ErrKeyNotFound = errors.New("key not found in cache")
	ErrInvalidKey  = errors.New("invalid key")
)
