package draftstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, found, _ := store.Get(ctx, "k")
	assert.False(t, found)

	assert.NoError(t, store.Set(ctx, "k", "v"))
	val, found, _ := store.Get(ctx, "k")
	assert.True(t, found)
	assert.Equal(t, "v", val)

	assert.NoError(t, store.Remove(ctx, "k"))
	_, found, _ = store.Get(ctx, "k")
	assert.False(t, found)
}
