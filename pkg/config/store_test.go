package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileStore(t *testing.T) {
	t.Run("missing file is an empty config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		store, err := NewFileStore(path)
		require.NoError(t, err)

		assert.Equal(t, path, store.Path())
		assert.False(t, store.IsModified())
		all, err := store.GetAll()
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("default path", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		store, err := NewFileStore("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".openclaw", "config.json"), store.Path())
	})

	t.Run("loads existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		doc := `{"version":"1","sections":{"atlas":{"chat_url":"https://chat.internal/"}}}`
		require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

		store, err := NewFileStore(path)
		require.NoError(t, err)
		section, err := store.GetSection("atlas")
		require.NoError(t, err)
		assert.Equal(t, "https://chat.internal/", section["chat_url"])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

		_, err := NewFileStore(path)
		assert.Error(t, err)
	})
}

func TestFileStore_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.SetSection("llm", map[string]interface{}{"api_key": "sk-test"}))
	assert.True(t, store.IsModified())

	require.NoError(t, store.Save())
	assert.False(t, store.IsModified())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc fileLayout
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, storeVersion, doc.Version)
	assert.Equal(t, "sk-test", doc.Sections["llm"]["api_key"])

	reloaded, err := NewFileStore(path)
	require.NoError(t, err)
	section, _ := reloaded.GetSection("llm")
	assert.Equal(t, "sk-test", section["api_key"])
}

func TestFileStore_Copies(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	input := map[string]interface{}{"key": "value"}
	require.NoError(t, store.SetSection("s", input))
	input["key"] = "changed"

	got, _ := store.GetSection("s")
	assert.Equal(t, "value", got["key"], "SetSection stores a copy")

	got["key"] = "mutated"
	again, _ := store.GetSection("s")
	assert.Equal(t, "value", again["key"], "GetSection returns a copy")

	all := map[string]map[string]interface{}{"a": {"x": 1}}
	require.NoError(t, store.SetAll(all))
	all["a"]["x"] = 2
	got, _ = store.GetSection("a")
	assert.Equal(t, 1, got["x"], "SetAll stores a deep copy")

	_, exists := got["missing"]
	assert.False(t, exists)
	empty, _ := store.GetSection("missing")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
