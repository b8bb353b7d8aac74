package database

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SessionStorage {
	t.Helper()
	dsn := os.Getenv("SECUREBANK_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("SECUREBANK_TEST_PG_DSN not set")
	}
	db, err := InitDB(dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Where("1 = 1").Delete(&Entry{})
		_ = Close(db)
	})
	return NewSessionStorage(db)
}

func TestSessionStoragePairLifecycle(t *testing.T) {
	store := openTestDB(t)

	require.NoError(t, store.Put(map[string]string{"token": "T1", "user": `{"id":1}`}))
	require.NoError(t, store.Put(map[string]string{"token": "T2", "user": `{"id":1}`}))

	v, ok, err := store.Get("token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "T2", v)

	require.NoError(t, store.Delete("token", "user"))
	_, ok, err = store.Get("token")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.Get("user")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEntryTableName(t *testing.T) {
	assert.Equal(t, "session_entries", Entry{}.TableName())
}
