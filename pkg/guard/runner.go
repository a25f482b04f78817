package guard

import (
	"context"

	"github.com/femtoclaw/femtoclaw/pkg/hooks"
)

// registryRunner adapts the plugin hook registry to the HookRunner port.
type registryRunner struct {
	reg *hooks.HookRegistry
}

// NewRegistryRunner exposes a hook registry as the gate's hook-runner
// capability.
func NewRegistryRunner(reg *hooks.HookRegistry) HookRunner {
	return &registryRunner{reg: reg}
}

func (r *registryRunner) HasBeforeToolCallHooks() bool {
	return r.reg.HasBeforeToolCallHooks()
}

func (r *registryRunner) RunBeforeToolCall(ctx context.Context, inv *ToolInvocation) (*HookOutcome, error) {
	decision, err := r.reg.RunBeforeToolCall(ctx, &hooks.ToolCallEvent{
		ToolName:   inv.ToolName,
		Params:     inv.Params,
		ToolCallID: inv.ToolCallID,
		AgentID:    inv.AgentID,
		SessionKey: inv.SessionKey,
	})
	if err != nil {
		return nil, err
	}
	if decision == nil {
		return nil, nil
	}
	return &HookOutcome{
		Block:       decision.Block,
		BlockReason: decision.BlockReason,
		Params:      decision.Params,
	}, nil
}
