package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palate-app/palate/internal/domain"
	"github.com/palate-app/palate/internal/session"
)

func TestMemoryStore_CreateGetSave(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := &session.Session{ID: "s1", Phase: session.PhaseLobby}
	require.NoError(t, store.Create(ctx, s))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	err = store.Create(ctx, &session.Session{ID: "s1"})
	assert.Error(t, err, "duplicate ids are rejected")

	s2 := &session.Session{ID: "s1", Phase: session.PhaseComplete}
	require.NoError(t, store.Save(ctx, s2))
	got, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, session.PhaseComplete, got.Phase, "save replaces wholesale")
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			assert.NoError(t, store.Create(ctx, &session.Session{ID: id}))
			_, err := store.Get(ctx, id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
