package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/femtoclaw/femtoclaw/pkg/logger"
)

// WrapFunc decorates a tool at registration time. The registry applies it to
// every registered tool, so execution paths cannot reach an undecorated tool.
type WrapFunc func(Tool) Tool

type ToolRegistry struct {
	tools map[string]Tool
	wrap  WrapFunc
	mu    sync.RWMutex
}

func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// NewGatedRegistry creates a registry whose tools are all decorated by wrap
// at registration time.
func NewGatedRegistry(wrap WrapFunc) *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool), wrap: wrap}
}

func (r *ToolRegistry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.wrap != nil {
		tool = r.wrap(tool)
	}
	r.tools[tool.Name()] = tool
}

func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

func (r *ToolRegistry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

func (r *ToolRegistry) Execute(ctx context.Context, name string, args map[string]any) *ToolResult {
	return r.ExecuteWithContext(ctx, name, args, "", "", nil)
}

// ExecuteWithContext executes a tool with channel/chatID context and an
// optional async progress callback.
func (r *ToolRegistry) ExecuteWithContext(
	ctx context.Context,
	name string,
	args map[string]any,
	channel, chatID string,
	asyncCallback AsyncCallback,
) *ToolResult {
	logger.InfoCF("tool", "Tool execution started", map[string]any{
		"tool": name,
	})

	tool, ok := r.Get(name)
	if !ok {
		logger.ErrorCF("tool", "Tool not found", map[string]any{
			"tool": name,
		})
		return ErrorResult(fmt.Sprintf("tool %q not found", name)).
			WithError(fmt.Errorf("tool not found"))
	}

	exec, ok := tool.(Executor)
	if !ok {
		return ErrorResult(fmt.Sprintf("tool %q is not executable", name)).
			WithError(fmt.Errorf("tool has no execution entry point"))
	}

	if contextual, ok := tool.(ContextualTool); ok && channel != "" && chatID != "" {
		contextual.SetContext(channel, chatID)
	}

	if asyncTool, ok := tool.(AsyncTool); ok && asyncCallback != nil {
		asyncTool.SetCallback(asyncCallback)
	}

	start := time.Now()
	result := exec.Execute(ctx, args)
	duration := time.Since(start)

	if result == nil {
		result = ErrorResult(fmt.Sprintf("tool %q returned nil result", name)).
			WithError(fmt.Errorf("tool %q returned nil result", name))
	}

	if result.IsError {
		logger.ErrorCF("tool", "Tool execution failed", map[string]any{
			"tool":        name,
			"duration_ms": duration.Milliseconds(),
			"error":       result.ForLLM,
		})
	} else {
		logger.InfoCF("tool", "Tool execution completed", map[string]any{
			"tool":          name,
			"duration_ms":   duration.Milliseconds(),
			"result_length": len(result.ForLLM),
		})
	}

	return result
}

// sortedToolNames returns tool names sorted, for deterministic definitions.
func (r *ToolRegistry) sortedToolNames() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *ToolRegistry) GetDefinitions() []map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedToolNames()
	definitions := make([]map[string]any, 0, len(sorted))
	for _, name := range sorted {
		definitions = append(definitions, ToolToSchema(r.tools[name]))
	}
	return definitions
}

// List returns all registered tool names, sorted.
func (r *ToolRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedToolNames()
}

func (r *ToolRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// GetSummaries returns "name - description" lines for all registered tools.
func (r *ToolRegistry) GetSummaries() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sorted := r.sortedToolNames()
	summaries := make([]string, 0, len(sorted))
	for _, name := range sorted {
		tool := r.tools[name]
		summaries = append(summaries, fmt.Sprintf("- `%s` - %s", tool.Name(), tool.Description()))
	}
	return summaries
}
