package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemory()

	_, ok, err := s.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("map-provider", "google"))
	v, ok, err := s.Get("map-provider")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "google", v)

	require.NoError(t, s.Set("map-provider", "mapbox"))
	v, _, _ = s.Get("map-provider")
	assert.Equal(t, "mapbox", v)

	require.NoError(t, s.Delete("map-provider"))
	_, ok, err = s.Get("map-provider")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error
	require.NoError(t, s.Delete("map-provider"))
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)

	_, ok, err := s.Get("markers")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set("markers", `[{"id":"a"}]`))
	require.NoError(t, s.Set("markers", `[{"id":"a"},{"id":"b"}]`))

	v, ok, err := s.Get("markers")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"},{"id":"b"}]`, v)

	require.NoError(t, s.Delete("markers"))
	_, ok, _ = s.Get("markers")
	assert.False(t, ok)

	require.NoError(t, s.Close())

	// Values survive a reopen
	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s2.Set("map-provider", "google"))
	require.NoError(t, s2.Close())

	s3, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s3.Close()
	v, ok, err = s3.Get("map-provider")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "google", v)
}
