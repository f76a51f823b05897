// Package atlas exposes the Atlas chat runner as an agent tool.
package atlas

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yaoshengwang/openclaw/pkg/agent/tools"
	"github.com/yaoshengwang/openclaw/pkg/atlas"
)

// ToolName is the name agents use to call the tool.
const ToolName = "atlas_prompt"

// Prompter runs one prompt through Atlas. *atlas.Runner implements it.
type Prompter interface {
	RunPrompt(ctx context.Context, req atlas.Request) (*atlas.Result, error)
}

// PromptTool sends a prompt to the Atlas chat page and returns the reply.
type PromptTool struct {
	runner    Prompter
	gate      atlas.GateOptions
	sandboxed bool
}

// NewPromptTool creates the tool. gate decides ShouldShow; its Sandboxed
// flag is also applied to every request.
func NewPromptTool(runner Prompter, gate atlas.GateOptions) *PromptTool {
	return &PromptTool{
		runner:    runner,
		gate:      gate,
		sandboxed: gate.Sandboxed,
	}
}

// Name returns the tool name.
func (t *PromptTool) Name() string {
	return ToolName
}

// Description returns the tool description.
func (t *PromptTool) Description() string {
	return "Send a prompt to the signed-in Atlas chat page in the user's browser and return the assistant's final reply as plain text. Use it when an answer from the Atlas assistant is needed. Slow: expect tens of seconds."
}

// Schema returns the tool's JSON schema.
func (t *PromptTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"prompt": map[string]interface{}{
				"type":        "string",
				"description": "The message to send",
			},
			"timeout_ms": map[string]interface{}{
				"type":        "integer",
				"description": "Overall time budget in milliseconds (default 120000)",
			},
			"url": map[string]interface{}{
				"type":        "string",
				"description": "Chat page to open instead of the default, e.g. an existing conversation URL",
			},
			"profile": map[string]interface{}{
				"type":        "string",
				"description": "Browser profile name (default profile when omitted)",
			},
		},
		[]string{"prompt"},
	)
}

// PromptInput represents the tool arguments.
type PromptInput struct {
	XMLName   xml.Name `xml:"arguments"`
	Prompt    string   `xml:"prompt"`
	TimeoutMs string   `xml:"timeout_ms"`
	URL       string   `xml:"url"`
	Profile   string   `xml:"profile"`
}

// Execute runs the prompt.
func (t *PromptTool) Execute(ctx context.Context, argsXML []byte) (string, map[string]interface{}, error) {
	var input PromptInput
	if err := tools.UnmarshalXMLWithFallback(argsXML, &input); err != nil {
		return "", nil, fmt.Errorf("invalid parameters: %w", err)
	}

	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return "", nil, fmt.Errorf("prompt is required")
	}

	req := atlas.Request{
		Prompt:    prompt,
		URL:       strings.TrimSpace(input.URL),
		Profile:   strings.TrimSpace(input.Profile),
		Sandboxed: t.sandboxed,
	}
	if raw := strings.TrimSpace(input.TimeoutMs); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return "", nil, fmt.Errorf("timeout_ms must be a positive integer, got %q", raw)
		}
		req.Timeout = time.Duration(ms) * time.Millisecond
	}

	res, err := t.runner.RunPrompt(ctx, req)
	if err != nil {
		return "", nil, err
	}

	return res.Text, map[string]interface{}{
		"took_ms": res.TookMs,
		"chars":   len(res.Text),
	}, nil
}

// IsLoopBreaking returns whether this tool breaks the agent loop.
func (t *PromptTool) IsLoopBreaking() bool {
	return false
}

// ShouldShow reports whether the tool should be offered at all.
func (t *PromptTool) ShouldShow() bool {
	return atlas.CanUse(t.gate)
}
