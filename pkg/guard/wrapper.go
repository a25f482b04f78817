package guard

import (
	"context"
	"fmt"

	"github.com/femtoclaw/femtoclaw/pkg/tools"
)

// BlockedError is the error attached to a tool result when the gate refused
// the call. Its message is the block reason, verbatim.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string { return e.Reason }

// gatedTool interposes the gate in front of a tool's execution entry point.
// Cancellation (the context) and the async progress callback pass through to
// the underlying tool unchanged.
type gatedTool struct {
	inner tools.Tool
	exec  tools.Executor
	gate  *Gate
}

// WrapTool returns a tool whose Execute first runs the gate. Definition-only
// tools (no execution entry point) pass through untouched: there is nothing
// to guard.
func WrapTool(t tools.Tool, gate *Gate) tools.Tool {
	if t == nil {
		return nil
	}
	exec, ok := t.(tools.Executor)
	if !ok {
		return t
	}
	return &gatedTool{inner: t, exec: exec, gate: gate}
}

func (g *gatedTool) Name() string               { return g.inner.Name() }
func (g *gatedTool) Description() string        { return g.inner.Description() }
func (g *gatedTool) Parameters() map[string]any { return g.inner.Parameters() }

// SetContext forwards the originating channel/chat to the underlying tool.
func (g *gatedTool) SetContext(channel, chatID string) {
	if contextual, ok := g.inner.(tools.ContextualTool); ok {
		contextual.SetContext(channel, chatID)
	}
}

// SetCallback forwards the progress callback to the underlying tool.
func (g *gatedTool) SetCallback(cb tools.AsyncCallback) {
	if async, ok := g.inner.(tools.AsyncTool); ok {
		async.SetCallback(cb)
	}
}

func (g *gatedTool) Execute(ctx context.Context, args map[string]any) *tools.ToolResult {
	info := CallInfoFrom(ctx)
	decision := g.gate.Evaluate(ctx, &ToolInvocation{
		ToolName:   g.inner.Name(),
		Params:     args,
		ToolCallID: info.ToolCallID,
		AgentID:    info.AgentID,
		SessionKey: info.SessionKey,
	})

	if decision.Blocked {
		err := &BlockedError{Reason: decision.Reason}
		return tools.ErrorResult(fmt.Sprintf("Tool call blocked: %s", decision.Reason)).WithError(err)
	}

	return g.exec.Execute(ctx, decision.Params)
}
