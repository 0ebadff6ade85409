package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveReadRemove(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	relPath, err := store.Save("morning ride.gpx", []byte("<gpx/>"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(relPath, "upload-data"+string(filepath.Separator)))
	assert.True(t, strings.HasSuffix(relPath, ".gpx"))

	data, err := store.Read(relPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("<gpx/>"), data)

	require.NoError(t, store.Remove(relPath))
	_, err = store.Read(relPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveAvoidsCollisions(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save("ride.gpx", []byte("a"))
	require.NoError(t, err)
	b, err := store.Save("ride.gpx", []byte("b"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	dataA, err := store.Read(a)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), dataA)
}

func TestSaveStripsHostilePathCharacters(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	relPath, err := store.Save("../../etc/passwd.gpx", []byte("x"))
	require.NoError(t, err)
	assert.NotContains(t, relPath, "..")

	_, err = store.Read(relPath)
	assert.NoError(t, err)
}

func TestReadRejectsEscapingPaths(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read("../outside.gpx")
	assert.Error(t, err)

	_, err = store.Read("/etc/passwd")
	assert.Error(t, err)

	assert.Error(t, store.Remove("../outside.gpx"))
}
