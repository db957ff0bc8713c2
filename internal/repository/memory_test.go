package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

func TestMemoryTemplateStore_SaveAndLookup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTemplateStore()
	enrolledAt := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, "alice", domain.Embedding{0.1, 0.2}, enrolledAt))

	got, err := store.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Identity)
	assert.Equal(t, domain.Embedding{0.1, 0.2}, got.Embedding)
	assert.Equal(t, enrolledAt, got.EnrolledAt)
}

func TestMemoryTemplateStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTemplateStore()
	first := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, store.Save(ctx, "alice", domain.Embedding{1}, first))
	require.NoError(t, store.Save(ctx, "alice", domain.Embedding{2}, second))

	got, err := store.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.Embedding{2}, got.Embedding)
	assert.Equal(t, second, got.EnrolledAt)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryTemplateStore_NotFound(t *testing.T) {
	_, err := NewMemoryTemplateStore().Lookup(context.Background(), "bob")

	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestMemoryTemplateStore_InvalidIdentity(t *testing.T) {
	store := NewMemoryTemplateStore()

	err := store.Save(context.Background(), "", domain.Embedding{1}, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)

	_, err = store.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)
}

func TestMemoryTemplateStore_CopiesEmbeddings(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryTemplateStore()
	embedding := domain.Embedding{1, 2, 3}

	require.NoError(t, store.Save(ctx, "alice", embedding, time.Now()))
	embedding[0] = 99

	got, err := store.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, float32(1), got.Embedding[0])

	got.Embedding[1] = 99
	again, err := store.Lookup(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, float32(2), again.Embedding[1])
}
