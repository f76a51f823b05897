package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobal clears the global manager for the duration of a test.
func resetGlobal(t *testing.T) {
	t.Helper()
	globalMu.Lock()
	globalManager = nil
	globalMu.Unlock()
	t.Cleanup(func() {
		globalMu.Lock()
		globalManager = nil
		globalMu.Unlock()
	})
}

func TestInitialize(t *testing.T) {
	resetGlobal(t)
	assert.False(t, IsInitialized())
	assert.Nil(t, GetAtlas())
	assert.Nil(t, GetLLM())
	assert.Panics(t, func() { Global() })

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, Initialize(path))
	require.True(t, IsInitialized())

	var ids []string
	for _, s := range Global().GetSections() {
		ids = append(ids, s.ID())
	}
	assert.Equal(t, []string{SectionIDAtlas, SectionIDLLM}, ids)
	assert.NotNil(t, GetAtlas())
	assert.NotNil(t, GetLLM())
}

func TestInitialize_LoadsExistingFile(t *testing.T) {
	resetGlobal(t)

	path := filepath.Join(t.TempDir(), "config.json")
	doc := `{"version":"1","sections":{
		"atlas":{"default_profile":"work","profiles":{"work":{"cdp_url":"http://127.0.0.1:9222","enabled":true}}},
		"llm":{"model":"gpt-4o-mini","fallback":true}}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	require.NoError(t, Initialize(path))

	p, err := GetAtlas().ResolveProfile("")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "work", p.Name)
	assert.True(t, p.Enabled)
	assert.Equal(t, "gpt-4o-mini", GetLLM().GetModel())
}

func TestInitialize_BadFile(t *testing.T) {
	resetGlobal(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sections":{"atlas":{"poll_interval":"soon"}}}`), 0600))

	assert.Error(t, Initialize(path))
	assert.False(t, IsInitialized())
}
