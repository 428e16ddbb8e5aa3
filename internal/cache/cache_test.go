package cache

import (
	"context"
	"testing"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "user:u1", "Jane Doe", time.Minute))
	v, ok, err := c.Get(ctx, "user:u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Jane Doe", v)
	assert.True(t, mr.Exists("fis:user:u1"))

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "user:u1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	c, mr := newTestRedis(t)
	ctx := context.Background()

	type doc struct {
		Place string `json:"place"`
	}
	require.NoError(t, SetJSON(ctx, c, "event", "42", doc{Place: "Adelboden"}, time.Minute))

	var got doc
	assert.True(t, GetJSON(ctx, c, "event", "42", &got))
	assert.Equal(t, "Adelboden", got.Place)

	require.NoError(t, mr.Set("fis:event:43", "not json"))
	assert.False(t, GetJSON(ctx, c, "event", "43", &got))

	assert.False(t, GetJSON(ctx, Noop{}, "event", "42", &got))
}

func TestNewRedis_Unreachable(t *testing.T) {
	_, err := NewRedis(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
