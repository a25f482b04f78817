// Package tools defines the tool surface exposed to agents: the Tool
// contract, the registry, and the built-in tools.
package tools

import "context"

// Tool describes a capability exposed to the agent. A Tool that also
// implements Executor can be invoked; definition-only tools (schema imported
// from elsewhere, not locally runnable) carry just the metadata.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
}

// Executor is the execution entry point of a runnable tool.
type Executor interface {
	Execute(ctx context.Context, args map[string]any) *ToolResult
}

// ContextualTool optionally receives the channel/chat the call originated
// from before execution.
type ContextualTool interface {
	SetContext(channel, chatID string)
}

// AsyncCallback reports intermediate progress from a long-running tool back
// to the caller.
type AsyncCallback func(content string)

// AsyncTool optionally accepts a progress callback before execution.
type AsyncTool interface {
	SetCallback(cb AsyncCallback)
}

// ToolResult is the outcome of one tool execution.
type ToolResult struct {
	ForLLM  string // content returned to the model
	ForUser string // optional user-facing content
	IsError bool
	Async   bool // true when the tool continues in the background
	Err     error
}

func NewToolResult(forLLM string) *ToolResult {
	return &ToolResult{ForLLM: forLLM}
}

// SilentResult is returned to the model but produces no user-facing output.
func SilentResult(forLLM string) *ToolResult {
	return &ToolResult{ForLLM: forLLM}
}

func AsyncResult(forLLM string) *ToolResult {
	return &ToolResult{ForLLM: forLLM, Async: true}
}

func ErrorResult(message string) *ToolResult {
	return &ToolResult{ForLLM: message, IsError: true}
}

func UserResult(content string) *ToolResult {
	return &ToolResult{ForLLM: content, ForUser: content}
}

func (r *ToolResult) WithError(err error) *ToolResult {
	r.Err = err
	return r
}

// ToolToSchema renders a tool definition in the function-call schema format
// consumed by provider APIs.
func ToolToSchema(t Tool) map[string]any {
	params := t.Parameters()
	if params == nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        t.Name(),
			"description": t.Description(),
			"parameters":  params,
		},
	}
}
