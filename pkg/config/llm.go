package config

import (
	"sync"
)

const (
	// SectionIDLLM is the identifier for the LLM settings section
	SectionIDLLM = "llm"
)

// LLMSection configures the OpenAI-compatible API used when Atlas cannot
// answer a prompt.
type LLMSection struct {
	Model    string
	BaseURL  string
	APIKey   string
	Fallback bool
	mu       sync.RWMutex
}

// NewLLMSection creates a new LLM section with fallback disabled.
func NewLLMSection() *LLMSection {
	return &LLMSection{}
}

// ID returns the section identifier.
func (s *LLMSection) ID() string {
	return SectionIDLLM
}

// Title returns the section title.
func (s *LLMSection) Title() string {
	return "LLM Fallback"
}

// Description returns the section description.
func (s *LLMSection) Description() string {
	return "OpenAI-compatible API used when the Atlas browser is unavailable. Set fallback to true to enable it."
}

// Data returns the current configuration data.
func (s *LLMSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"model":    s.Model,
		"base_url": s.BaseURL,
		"api_key":  s.APIKey,
		"fallback": s.Fallback,
	}
}

// SetData updates the configuration from the provided data.
func (s *LLMSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if model, ok := data["model"].(string); ok {
		s.Model = model
	}
	if baseURL, ok := data["base_url"].(string); ok {
		s.BaseURL = baseURL
	}
	if apiKey, ok := data["api_key"].(string); ok {
		s.APIKey = apiKey
	}
	if fallback, ok := data["fallback"].(bool); ok {
		s.Fallback = fallback
	}
	return nil
}

// Validate always passes; credentials are checked when the provider is built.
func (s *LLMSection) Validate() error {
	return nil
}

// Reset resets the section to default configuration.
func (s *LLMSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Model = ""
	s.BaseURL = ""
	s.APIKey = ""
	s.Fallback = false
}

// GetModel returns the configured model name.
func (s *LLMSection) GetModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Model
}

// GetBaseURL returns the configured base URL.
func (s *LLMSection) GetBaseURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.BaseURL
}

// GetAPIKey returns the configured API key.
func (s *LLMSection) GetAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.APIKey
}

// FallbackEnabled reports whether the fallback provider may be used.
func (s *LLMSection) FallbackEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fallback
}
