package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFixture(t *testing.T) *StateStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStateStore_SaveAndLoad(t *testing.T) {
	store := openFixture(t)
	p := store.ForSession("s1")

	p.Save("chatState", map[string]any{"open": true})

	var loaded map[string]any
	require.True(t, p.Load("chatState", &loaded))
	assert.Equal(t, true, loaded["open"])
}

func TestStateStore_LoadMissingKey(t *testing.T) {
	store := openFixture(t)

	var dest map[string]any
	assert.False(t, store.ForSession("s1").Load("absent", &dest))
}

func TestStateStore_SessionsIsolated(t *testing.T) {
	store := openFixture(t)

	store.ForSession("s1").Save("queryHistory", []string{"a"})

	var dest []string
	assert.False(t, store.ForSession("s2").Load("queryHistory", &dest))
}

func TestStateStore_OverwriteReplacesValue(t *testing.T) {
	store := openFixture(t)
	p := store.ForSession("s1")

	p.Save("queryHistory", []string{"a"})
	p.Save("queryHistory", []string{"a", "b"})

	var loaded []string
	require.True(t, p.Load("queryHistory", &loaded))
	assert.Equal(t, []string{"a", "b"}, loaded)
}

func TestStateStore_CorruptValueDropped(t *testing.T) {
	store := openFixture(t)
	_, err := store.db.Exec(`
		INSERT INTO session_state (session_id, key, value) VALUES ('s1', 'chatState', '{broken')`)
	require.NoError(t, err)

	var dest map[string]any
	p := store.ForSession("s1")
	assert.False(t, p.Load("chatState", &dest))

	// The corrupt row was deleted, so a fresh save round-trips cleanly.
	p.Save("chatState", map[string]any{"open": false})
	require.True(t, p.Load("chatState", &dest))
}

func TestStateStore_DeleteSession(t *testing.T) {
	store := openFixture(t)
	p := store.ForSession("s1")
	p.Save("chatState", map[string]any{"open": true})

	require.NoError(t, store.DeleteSession("s1"))

	var dest map[string]any
	assert.False(t, p.Load("chatState", &dest))
}
