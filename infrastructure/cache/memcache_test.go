package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemCache_SetGet(t *testing.T) {
	c := NewMemCache[string](0)
	defer c.Close()

	c.Set("k", "v", 0)

	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", got)

	_, ok = c.Get("missing")
	require.False(t, ok)
}

func TestMemCache_ExpiresLazily(t *testing.T) {
	c := NewMemCache[int](0)
	defer c.Close()

	c.Set("k", 1, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	require.False(t, ok)
}

func TestMemCache_Delete(t *testing.T) {
	c := NewMemCache[int](0)
	defer c.Close()

	c.Set("k", 1, 0)
	c.Delete("k")

	_, ok := c.Get("k")
	require.False(t, ok)
}
