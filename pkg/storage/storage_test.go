package storage

import (
	"bytes"
	"crypto/sha256"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeenStore_Ephemeral(t *testing.T) {
	store, err := OpenSeenStore("", nil)
	require.NoError(t, err)

	dir := store.dir
	assert.DirExists(t, dir)

	testCases := []struct {
		line string
		want bool
	}{
		{line: "alpha", want: false},
		{line: "beta", want: false},
		{line: "alpha", want: true},
		{line: "", want: false},
		{line: "", want: true},
		{line: "Alpha", want: false},
	}

	for _, tc := range testCases {
		seen, err := store.Seen(tc.line)
		require.NoError(t, err)
		assert.Equal(t, tc.want, seen, "line %q", tc.line)
	}

	require.NoError(t, store.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "temporary store should be removed")

	// closing twice is harmless
	require.NoError(t, store.Close())
}

func TestSeenStore_Persistent(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sq_storage_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	dir := filepath.Join(tmpDir, "seen")

	store, err := OpenSeenStore(dir, nil)
	require.NoError(t, err)
	seen, err := store.Seen("first run")
	require.NoError(t, err)
	assert.False(t, seen)
	require.NoError(t, store.Close())

	assert.DirExists(t, dir)

	store, err = OpenSeenStore(dir, nil)
	require.NoError(t, err)
	defer store.Close()

	seen, err = store.Seen("first run")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestSeenStore_LogsFirstSighting(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	store, err := OpenSeenStore("", logger)
	require.NoError(t, err)
	defer store.Close()

	key := sha256.Sum256([]byte("never"))
	_, ok, err := store.firstSeen(key[:])
	require.NoError(t, err)
	assert.False(t, ok)

	before := time.Now().Add(-time.Second)
	seen, err := store.Seen("line")
	require.NoError(t, err)
	require.False(t, seen)

	key = sha256.Sum256([]byte("line"))
	id, ok, err := store.firstSeen(key[:])
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, id.Time().After(before))

	seen, err = store.Seen("line")
	require.NoError(t, err)
	assert.True(t, seen)
	assert.Contains(t, buf.String(), "Dropping duplicate line")
	assert.Contains(t, buf.String(), "first_seen="+id.String())
}
