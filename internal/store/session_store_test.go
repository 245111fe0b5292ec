package store

import (
	"testing"

	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderTokenKey(t *testing.T) {
	assert.Equal(t, Key("provider_access_token"), ProviderTokenKey(models.GameVariantTapBox))
	assert.Equal(t, Key("snake_game_provider_token"), ProviderTokenKey(models.GameVariantSnake))
}

func TestCacheSessionStore(t *testing.T) {
	t.Run("rejects keys outside the typed set", func(t *testing.T) {
		s := NewMemorySessionStore(models.GameVariantTapBox)

		err := s.Set("snake_game_provider_token", "tok")
		require.ErrorIs(t, err, ErrUnknownKey)

		_, ok := s.Get("anything")
		assert.False(t, ok)
	})

	t.Run("set, get and clear", func(t *testing.T) {
		s := NewMemorySessionStore(models.GameVariantSnake)

		require.NoError(t, s.Set(s.ProviderKey(), "tok"))
		got, ok := s.Get(s.ProviderKey())
		require.True(t, ok)
		assert.Equal(t, "tok", got)

		require.NoError(t, s.Clear(s.ProviderKey()))
		_, ok = s.Get(s.ProviderKey())
		assert.False(t, ok)
	})

	t.Run("empty value deletes", func(t *testing.T) {
		s := NewMemorySessionStore(models.GameVariantTapBox)
		require.NoError(t, s.Set(KeyUserToken, "t"))
		require.NoError(t, s.Set(KeyUserToken, ""))

		_, ok := s.Get(KeyUserToken)
		assert.False(t, ok)
	})
}

func TestIdentity(t *testing.T) {
	s := NewMemorySessionStore(models.GameVariantTapBox)

	_, err := LoadIdentity(s)
	require.ErrorIs(t, err, ErrNoIdentity)

	require.NoError(t, SaveIdentity(s, models.UserIdentity{UserID: "u1", UserToken: "ut", Email: "a@b.c"}))
	require.NoError(t, s.Set(s.ProviderKey(), "provider"))

	identity, err := LoadIdentity(s)
	require.NoError(t, err)
	assert.Equal(t, models.UserIdentity{UserID: "u1", UserToken: "ut", Email: "a@b.c"}, *identity)

	require.NoError(t, ClearIdentity(s))
	_, err = LoadIdentity(s)
	require.ErrorIs(t, err, ErrNoIdentity)

	tok, ok := s.Get(s.ProviderKey())
	assert.True(t, ok, "logout must keep the provider credential")
	assert.Equal(t, "provider", tok)
}
