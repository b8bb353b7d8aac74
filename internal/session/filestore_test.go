package session

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"
)

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs, err := NewFileStorage(path, nil)
	require.NoError(t, err)

	_, ok, err := fs.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fs.Put(map[string]string{KeyToken: "T", KeyUser: "{}"}))
	v, ok, err := fs.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "T", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, fs.Delete(KeyToken, KeyUser))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStorageSealed(t *testing.T) {
	key := bytes.Repeat([]byte{7}, chacha20poly1305.KeySize)
	path := filepath.Join(t.TempDir(), "session.bin")
	fs, err := NewFileStorage(path, key)
	require.NoError(t, err)

	require.NoError(t, fs.Put(map[string]string{KeyToken: "secret-token"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")

	v, ok, err := fs.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "secret-token", v)

	wrongKey, err := NewFileStorage(path, bytes.Repeat([]byte{8}, chacha20poly1305.KeySize))
	require.NoError(t, err)
	_, ok, err = wrongKey.Get(KeyToken)
	require.ErrorIs(t, err, ErrCorruptSession)
	assert.False(t, ok)
}

func TestFileStorageGarbageIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("%%%"), 0o600))
	fs, err := NewFileStorage(path, nil)
	require.NoError(t, err)

	_, ok, err := fs.Get(KeyUser)
	require.ErrorIs(t, err, ErrCorruptSession)
	assert.False(t, ok)

	require.NoError(t, fs.Put(map[string]string{KeyUser: "u"}))
	v, _, _ := fs.Get(KeyUser)
	assert.Equal(t, "u", v)
}

func TestFileStorageRejectsShortKey(t *testing.T) {
	_, err := NewFileStorage("x", []byte("short"))
	assert.Error(t, err)
}

func TestFileStorageDeleteRemovesGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("%%%"), 0o600))
	fs, err := NewFileStorage(path, nil)
	require.NoError(t, err)

	require.NoError(t, fs.Delete(KeyToken, KeyUser))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStorageReadFailureIsNotCorrupt(t *testing.T) {
	// A directory in place of the file cannot be read at all.
	path := t.TempDir()
	fs, err := NewFileStorage(path, nil)
	require.NoError(t, err)

	_, _, err = fs.Get(KeyToken)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCorruptSession)

	assert.Error(t, fs.Delete(KeyToken, KeyUser))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
