package store_test

import (
	"context"
	"testing"

	"github.com/guyt101z/vumi-smpp-client/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyspace(t *testing.T) {
	k := store.Keyspace{SystemID: "vumi", Host: "smsc.example.com", Port: 2775}
	assert.Equal(t, "vumi@smsc.example.com:2775", k.Prefix())
	assert.Equal(t, "vumi@smsc.example.com:2775#unacked", k.UnackedKey())
	assert.Equal(t, "vumi@smsc.example.com:2775#multi_abc", k.MultipartKey("abc"))
}

func TestMemoryUnackedAccounting(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	key := "vumi@a:1#unacked"

	for i := 0; i < 3; i++ {
		require.NoError(t, m.ListPushLeft(ctx, key, []byte("x")))
	}
	n, err := m.ListLen(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for i := 0; i < 3; i++ {
		_, ok, err := m.ListPopLeft(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	n, err = m.ListLen(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, ok, err := m.ListPopLeft(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
