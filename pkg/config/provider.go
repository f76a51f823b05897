package config

import (
	"fmt"
	"os"

	"github.com/yaoshengwang/openclaw/pkg/llm/openai"
)

// BuildProvider creates the fallback LLM provider. Each value is taken from
// the first source that sets it: CLI flags, then OPENAI_* environment
// variables, then the llm config section, then defaultModel for the model.
func BuildProvider(cliModel, cliBaseURL, cliAPIKey, defaultModel string) (*openai.Provider, error) {
	model := cliModel
	baseURL := cliBaseURL
	apiKey := cliAPIKey

	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}

	if section := GetLLM(); section != nil {
		// a CLI model equal to the default counts as unset
		if model == "" || model == defaultModel {
			if m := section.GetModel(); m != "" {
				model = m
			}
		}
		if baseURL == "" {
			baseURL = section.GetBaseURL()
		}
		if apiKey == "" {
			apiKey = section.GetAPIKey()
		}
	}

	if model == "" {
		model = defaultModel
	}

	if apiKey == "" {
		return nil, fmt.Errorf("API key is required. Set OPENAI_API_KEY, pass -api-key, or set llm.api_key in ~/.openclaw/config.json")
	}

	opts := []openai.ProviderOption{openai.WithModel(model)}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	provider, err := openai.NewProvider(apiKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return provider, nil
}
