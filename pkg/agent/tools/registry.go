package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry maps tool names to tools and dispatches parsed calls.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry holding tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Register adds a tool. Names must be unique.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool %q already registered", t.Name())
	}
	r.tools[t.Name()] = t
	return nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch parses the first tool call in text and executes it.
func (r *Registry) Dispatch(ctx context.Context, text string) (string, map[string]interface{}, error) {
	call, _, err := ParseToolCall(text)
	if err != nil {
		return "", nil, err
	}
	if call.ServerName != defaultServerName {
		return "", nil, fmt.Errorf("unknown tool server %q", call.ServerName)
	}
	t, ok := r.Get(call.ToolName)
	if !ok {
		return "", nil, fmt.Errorf("unknown tool %q", call.ToolName)
	}
	return t.Execute(ctx, call.GetArgumentsXML())
}
