// Package guard implements the tool-call authorization pipeline: every tool
// invocation passes through the gate before its side-effecting code runs.
//
// The gate reconciles two boundaries with opposite failure modes. The
// security coach is mandatory and fails closed: if it is missing, errors, or
// objects, the call is blocked. The hook chain is an open extension surface
// and fails open: a crashing hook is logged and ignored, but an explicit
// block from a hook is honored.
package guard

import "context"

// ToolInvocation is one tool call as seen by the authorization pipeline.
// ToolName is always the canonical form. The struct is immutable for a given
// pass; a mutated parameter set produces a new invocation, never an in-place
// write.
type ToolInvocation struct {
	ToolName   string
	Params     map[string]any
	ToolCallID string
	AgentID    string
	SessionKey string
}

// CoachVerdict is the outcome of one security-coach evaluation.
type CoachVerdict struct {
	Block       bool
	BlockReason string
}

// Coach is the injected threat-evaluation capability. Implementations may
// suspend on I/O; the gate places no timeout around the call.
type Coach interface {
	BeforeToolCall(ctx context.Context, inv *ToolInvocation) (*CoachVerdict, error)
}

// HookOutcome is the folded result of running the before-tool-call hook
// chain. Params is non-nil only when at least one hook patched the running
// parameter set.
type HookOutcome struct {
	Block       bool
	BlockReason string
	Params      map[string]any
}

// HookRunner is the registry of third-party before-tool-call hooks.
type HookRunner interface {
	HasBeforeToolCallHooks() bool
	RunBeforeToolCall(ctx context.Context, inv *ToolInvocation) (*HookOutcome, error)
}
