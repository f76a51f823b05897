package config

import (
	"sync"
)

var (
	// globalManager is the process-wide configuration manager
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates the global configuration manager, registers the
// built-in sections and loads them from configPath. An empty path means
// ~/.openclaw/config.json.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	store, err := NewFileStore(configPath)
	if err != nil {
		return err
	}

	manager := NewManager(store)

	if err := manager.RegisterSection(NewAtlasSection()); err != nil {
		return err
	}

	if err := manager.RegisterSection(NewLLMSection()); err != nil {
		return err
	}

	if err := manager.LoadAll(); err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// GetAtlas returns the Atlas section from global config.
// Returns nil if config is not initialized.
func GetAtlas() *AtlasSection {
	if !IsInitialized() {
		return nil
	}

	section, ok := Global().GetSection(SectionIDAtlas)
	if !ok {
		return nil
	}

	atlasSection, _ := section.(*AtlasSection)
	return atlasSection
}

// GetLLM returns the LLM settings section from global config.
// Returns nil if config is not initialized.
func GetLLM() *LLMSection {
	if !IsInitialized() {
		return nil
	}

	section, ok := Global().GetSection(SectionIDLLM)
	if !ok {
		return nil
	}

	llm, _ := section.(*LLMSection)
	return llm
}
