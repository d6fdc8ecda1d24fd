package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_OrderAndLookup(t *testing.T) {
	reg := NewRegistry(DefaultStations())

	require.Equal(t, 14, reg.Len())
	assert.Equal(t, "46266", reg.Stations()[0].ID, "registry preserves load order")

	s, ok := reg.Lookup("46225")
	require.True(t, ok)
	assert.Equal(t, "Torrey Pines Outer", s.Name)
	assert.Equal(t, "LJAC1", s.WindFallbackID)

	_, ok = reg.Lookup("00000")
	assert.False(t, ok)
}

func TestLoadStationsFile(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stations.json")
		require.NoError(t, os.WriteFile(path, []byte(
			`[{"id":"46042","lat":36.785,"lon":-122.398,"name":"Monterey"}]`), 0o600))

		stations, err := LoadStationsFile(path)
		require.NoError(t, err)
		require.Len(t, stations, 1)
		assert.Equal(t, "46042", stations[0].ID)
	})

	t.Run("missing file surfaces ErrNotExist", func(t *testing.T) {
		_, err := LoadStationsFile(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "stations.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

		_, err := LoadStationsFile(path)
		require.Error(t, err)
	})
}

func TestLoadMappingFile(t *testing.T) {
	t.Run("valid mapping", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cdip.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"46266":"153"}`), 0o600))

		m, err := LoadMappingFile(path)
		require.NoError(t, err)
		assert.Equal(t, "153", m["46266"])
	})

	t.Run("missing file surfaces ErrNotExist", func(t *testing.T) {
		_, err := LoadMappingFile(filepath.Join(t.TempDir(), "absent.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
