// Package tools exposes selected dealer operations to the AI assistant as
// named tools. Every call is tenant-scoped and dispatched through one
// registry so the assistant can never reach a service directly.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Excaliburthirdie/Sewell-Motorcoach-sub001/internal/obs"
)

// ErrUnknownTool is returned by Dispatch for names nothing registered.
var ErrUnknownTool = errors.New("tools: unknown tool")

// Tool is one callable operation with a human-readable description the
// assistant uses for selection.
type Tool struct {
	Description string
	Run         func(ctx context.Context, tenantID string, args map[string]any) (any, error)
}

// Registry maps tool names to implementations.
type Registry struct {
	tools map[string]Tool
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool), now: time.Now}
}

// Register adds a tool. Registering the same name twice panics; tool sets
// are wired once at startup and a duplicate is a programming error.
func (r *Registry) Register(name string, tool Tool) {
	if _, ok := r.tools[name]; ok {
		panic(fmt.Sprintf("tools: duplicate tool %q", name))
	}
	if tool.Run == nil {
		panic(fmt.Sprintf("tools: tool %q has no Run", name))
	}
	r.tools[name] = tool
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.tools))
	for name := range r.tools {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Describe returns name -> description for the whole registry.
func (r *Registry) Describe() map[string]string {
	out := make(map[string]string, len(r.tools))
	for name, tool := range r.tools {
		out[name] = tool.Description
	}
	return out
}

// Dispatch runs a named tool within the tenant scope and logs the call.
// An unknown name is an error, never a silent no-op.
func (r *Registry) Dispatch(ctx context.Context, name, tenantID string, args map[string]any) (any, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownTool, name)
	}
	start := r.now()
	result, err := tool.Run(ctx, tenantID, args)
	fields := map[string]any{
		"tool":        name,
		"tenant":      tenantID,
		"duration_ms": r.now().Sub(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	obs.Event("tool_dispatch", fields)
	if err != nil {
		return nil, err
	}
	return result, nil
}
