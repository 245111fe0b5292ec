package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache[string]()

	_, err := c.Get("user_id")
	require.ErrorIs(t, err, ErrKeyNotFound)
	require.ErrorIs(t, c.Set("", "x"), ErrInvalidKey)

	require.NoError(t, c.Set("user_id", "u1"))
	require.NoError(t, c.Set("user_token", "t1"))

	value, err := c.Get("user_id")
	require.NoError(t, err)
	assert.Equal(t, "u1", value)

	require.NoError(t, c.Delete("user_id", "missing"))
	_, err = c.Get("user_id")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	value, err = c.Get("user_token")
	require.NoError(t, err)
	assert.Equal(t, "t1", value)
}
