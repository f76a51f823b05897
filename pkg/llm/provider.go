// Package llm defines the completion interface used when the Atlas browser
// cannot answer a prompt.
//
// Example usage:
//
//	provider, err := openai.NewProvider(os.Getenv("OPENAI_API_KEY"), openai.WithModel("gpt-4o"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reply, err := provider.Complete(ctx, "Say hello")
package llm

import (
	"context"
)

// Provider answers a single prompt.
type Provider interface {
	// Complete sends prompt as one user message and returns the reply text.
	Complete(ctx context.Context, prompt string) (string, error)

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}
