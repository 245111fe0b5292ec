package cache

import "sync"

// MemoryCache keeps values in a map for the life of the process.
type MemoryCache[T any] struct {
	mu     sync.RWMutex
	values map[string]T
}

var _ Cache[string] = (*MemoryCache[string])(nil)

func NewMemoryCache[T any]() *MemoryCache[T] {
	return &MemoryCache[T]{values: make(map[string]T)}
}

func (c *MemoryCache[T]) Get(key string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.values[key]
	if !ok {
		var zero T
		return zero, ErrKeyNotFound
	}
	return value, nil
}

func (c *MemoryCache[T]) Set(key string, value T) error {
	if key == "" {
		return ErrInvalidKey
	}

	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache[T]) Delete(keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.values, key)
	}
	return nil
}
