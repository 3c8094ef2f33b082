package sessionrepo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/citysafe/crimebot/internal/domain/chat"
	"github.com/citysafe/crimebot/internal/domain/query"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	session := uuid.New()

	_, found, err := store.Get(ctx, session)
	require.NoError(t, err)
	require.False(t, found)

	lat, lon := 41.8781, -87.6298
	saved := chat.Context{
		LastParameters: query.ParameterSet{Latitude: &lat, Longitude: &lon},
		Turns:          2,
	}
	require.NoError(t, store.Save(ctx, session, saved))

	got, found, err := store.Get(ctx, session)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 2, got.Turns)
	require.Equal(t, lat, *got.LastParameters.Latitude)
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	session := uuid.New()

	require.NoError(t, store.Save(ctx, session, chat.Context{Turns: 1}))
	require.NoError(t, store.Clear(ctx, session))

	_, found, err := store.Get(ctx, session)
	require.NoError(t, err)
	require.False(t, found)

	// Clearing an unknown session is a no-op.
	require.NoError(t, store.Clear(ctx, uuid.New()))
}
