package gazetteer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveBuiltins(t *testing.T) {
	g, err := NewStatic("")
	require.NoError(t, err)

	lat, lon, ok, err := g.Resolve(context.Background(), "Downtown Chicago")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 41.8781, lat)
	require.Equal(t, -87.6298, lon)
}

func TestResolveStripsLeadingThe(t *testing.T) {
	g, err := NewStatic("")
	require.NoError(t, err)

	_, _, ok, err := g.Resolve(context.Background(), "the Chicago Loop")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestResolveUnknownPlace(t *testing.T) {
	g, err := NewStatic("")
	require.NoError(t, err)

	_, _, ok, err := g.Resolve(context.Background(), "Atlantis")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNewStaticMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Logan Square:\n  latitude: 41.9234\n  longitude: -87.7076\n"), 0o644))

	g, err := NewStatic(path)
	require.NoError(t, err)

	lat, lon, ok, err := g.Resolve(context.Background(), "logan square")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 41.9234, lat)
	require.Equal(t, -87.7076, lon)

	// Builtins survive the merge.
	_, _, ok, err = g.Resolve(context.Background(), "hyde park")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNewStaticBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "places.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\t not yaml ["), 0o644))

	_, err := NewStatic(path)
	require.Error(t, err)
}
