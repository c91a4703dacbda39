package memory

import (
	"context"
	"testing"

	"github.com/lox/blackjack/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()
	var _ storage.Store = s

	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Put(ctx, "k", "v1"))
	require.NoError(t, s.Put(ctx, "k", "v2"))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
	assert.Equal(t, 2, s.Writes())
	assert.Equal(t, map[string]string{"k": "v2"}, s.Dump())

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoreRejectsEmptyKey(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.Put(context.Background(), "  ", "v"), storage.ErrInvalidKey)
}
