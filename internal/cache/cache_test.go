package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image-labeler/internal/config"
)

type doc struct {
	Width  int   `json:"width"`
	Labels []int `json:"labels"`
}

func TestKey(t *testing.T) {
	a, err := Key(doc{Width: 3, Labels: []int{1, 2}})
	require.NoError(t, err)
	b, err := Key(doc{Width: 3, Labels: []int{1, 2}})
	require.NoError(t, err)
	c, err := Key(doc{Width: 4, Labels: []int{1, 2}})
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	_, err = Key(make(chan int))
	assert.Error(t, err)
}

func TestDisabled(t *testing.T) {
	c := New(config.RedisConfig{Enabled: false})
	require.Nil(t, c)

	ctx := context.Background()
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrDisabled)
	assert.ErrorIs(t, c.Set(ctx, "k", []byte("v")), ErrDisabled)
	assert.ErrorIs(t, c.Ping(ctx), ErrDisabled)
	assert.NoError(t, c.Close())
}

func TestNewEnabled(t *testing.T) {
	c := New(config.RedisConfig{Enabled: true, Addr: "localhost:0"})
	require.NotNil(t, c)
	assert.NoError(t, c.Close())
}
