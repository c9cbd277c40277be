package memory

import (
	"context"
	"testing"
	"time"

	"github.com/picstash/picstash/cache/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	m, err := NewMemory(DefaultConfig())
	require.NoError(t, err)
	defer m.Close()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, m.Set(ctx, "k1", payload{Name: "trips", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, m.Get(ctx, "k1", &got))
	assert.Equal(t, "trips", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestGet_Miss(t *testing.T) {
	m, err := NewMemory(DefaultConfig())
	require.NoError(t, err)
	defer m.Close()

	var got string
	err = m.Get(context.Background(), "nope", &got)
	assert.ErrorIs(t, err, types.ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	m, err := NewMemory(DefaultConfig())
	require.NoError(t, err)
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k1", "v", time.Minute))
	require.NoError(t, m.Delete(ctx, "k1"))

	var got string
	assert.ErrorIs(t, m.Get(ctx, "k1", &got), types.ErrCacheMiss)
}
