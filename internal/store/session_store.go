// Package store persists the small set of values a browser tab would keep in
// local storage: the end user's identity and the provider credential.
package store

import (
	"errors"
	"fmt"

	"github.com/ahmetkoprulu/rtrp/arcade/common/cache"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
)

type Key string

const (
	KeyUserID    Key = "user_id"
	KeyUserToken Key = "user_token"
	KeyUserEmail Key = "user_email"
)

// ProviderTokenKey is the provider credential slot; each game variant has its own.
func ProviderTokenKey(variant models.GameVariant) Key {
	if variant == models.GameVariantSnake {
		return "snake_game_provider_token"
	}
	return "provider_access_token"
}

var ErrUnknownKey = errors.New("unknown session key")

type SessionStore interface {
	Get(key Key) (string, bool)
	Set(key Key, value string) error
	Clear(keys ...Key) error
}

// CacheSessionStore keeps session values in a cache.Cache without expiry.
type CacheSessionStore struct {
	cache       cache.Cache[string]
	providerKey Key
}

var _ SessionStore = (*CacheSessionStore)(nil)

func NewCacheSessionStore(c cache.Cache[string], variant models.GameVariant) *CacheSessionStore {
	return &CacheSessionStore{cache: c, providerKey: ProviderTokenKey(variant)}
}

func NewMemorySessionStore(variant models.GameVariant) *CacheSessionStore {
	return NewCacheSessionStore(cache.NewMemoryCache[string](), variant)
}

func (s *CacheSessionStore) ProviderKey() Key {
	return s.providerKey
}

func (s *CacheSessionStore) known(key Key) bool {
	switch key {
	case KeyUserID, KeyUserToken, KeyUserEmail, s.providerKey:
		return true
	}
	return false
}

func (s *CacheSessionStore) Get(key Key) (string, bool) {
	if !s.known(key) {
		return "", false
	}

	value, err := s.cache.Get(string(key))
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

func (s *CacheSessionStore) Set(key Key, value string) error {
	if !s.known(key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if value == "" {
		return s.cache.Delete(string(key))
	}
	return s.cache.Set(string(key), value)
}

func (s *CacheSessionStore) Clear(keys ...Key) error {
	raw := make([]string, 0, len(keys))
	for _, key := range keys {
		if !s.known(key) {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
		raw = append(raw, string(key))
	}
	return s.cache.Delete(raw...)
}
