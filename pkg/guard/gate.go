package guard

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/femtoclaw/femtoclaw/pkg/logger"
)

// Gate sequences the security pre-check, the hook chain, and the conditional
// re-check into a single allow/block decision. It is re-entrant and holds no
// locks of its own: the capability slots are written once at startup and
// every evaluation builds its own request/response values.
type Gate struct {
	caps *Capabilities
}

func NewGate(caps *Capabilities) *Gate {
	return &Gate{caps: caps}
}

// Evaluate runs one tool call through the pipeline.
//
// The coach pre-check is mandatory and cannot be skipped: no coach, a coach
// error, or an explicit coach block all terminate the call. The hook chain
// is best-effort: a chain failure is logged and the call proceeds with the
// original params, while an explicit hook block is honored. When the chain
// rewrites the params to something value-different from the input, the coach
// re-evaluates the rewritten params, since a rewrite can introduce a
// payload the original params did not contain. The coach must see what
// will actually execute.
func (g *Gate) Evaluate(ctx context.Context, req *ToolInvocation) Decision {
	name := CanonicalToolName(req.ToolName)
	params := req.Params
	if params == nil {
		params = map[string]any{}
	}

	inv := &ToolInvocation{
		ToolName:   name,
		Params:     params,
		ToolCallID: req.ToolCallID,
		AgentID:    req.AgentID,
		SessionKey: req.SessionKey,
	}

	coach := g.caps.Coach()
	if coach == nil {
		logger.WarnCF("guard", "Tool call blocked: coach not initialized", map[string]any{
			"tool": name,
		})
		return blocked(ReasonCoachNotReady)
	}

	verdict, err := coach.BeforeToolCall(ctx, inv)
	if err != nil {
		logger.WarnCF("guard", "Coach evaluation failed", map[string]any{
			"tool":  name,
			"error": err.Error(),
		})
		return blocked(ReasonCoachError)
	}
	if verdict != nil && verdict.Block {
		return blocked(reasonOr(verdict.BlockReason, ReasonCoachDefault))
	}

	runner := g.caps.HookRunner()
	if runner == nil || !runner.HasBeforeToolCallHooks() {
		return allowed(params)
	}

	outcome, err := runner.RunBeforeToolCall(ctx, inv)
	if err != nil {
		// A buggy community hook must never deny legitimate tool use,
		// nor be trusted to approve one: proceed with the original,
		// unmutated params.
		logger.WarnCF("guard", "Hook chain failed, continuing without it", map[string]any{
			"tool":  name,
			"error": err.Error(),
		})
		return allowed(params)
	}
	if outcome == nil {
		return allowed(params)
	}
	if outcome.Block {
		return blocked(reasonOr(outcome.BlockReason, ReasonHookBlockDefault))
	}
	if outcome.Params == nil || paramsEqual(outcome.Params, params) {
		return allowed(params)
	}

	// A hook rewrote the params: re-run the coach against what will
	// actually execute. Its outcome is authoritative.
	recheck := &ToolInvocation{
		ToolName:   name,
		Params:     outcome.Params,
		ToolCallID: req.ToolCallID,
		AgentID:    req.AgentID,
		SessionKey: req.SessionKey,
	}
	verdict, err = coach.BeforeToolCall(ctx, recheck)
	if err != nil {
		logger.WarnCF("guard", "Coach re-check failed after hook mutation", map[string]any{
			"tool":  name,
			"error": err.Error(),
		})
		return blocked(ReasonCoachError)
	}
	if verdict != nil && verdict.Block {
		logger.WarnCF("guard", "Coach blocked hook-mutated params", map[string]any{
			"tool": name,
		})
		return blocked(reasonOr(verdict.BlockReason, ReasonCoachDefault))
	}

	return allowed(outcome.Params)
}

func reasonOr(reason, fallback string) string {
	if reason != "" {
		return reason
	}
	return fallback
}

// paramsEqual compares two parameter sets by value through a canonical JSON
// round-trip, so key order and concrete numeric types do not matter. When
// either set cannot be canonicalized the sets are treated as different,
// which errs toward re-checking.
func paramsEqual(a, b map[string]any) bool {
	ca, ok := canonicalize(a)
	if !ok {
		return false
	}
	cb, ok := canonicalize(b)
	if !ok {
		return false
	}
	return reflect.DeepEqual(ca, cb)
}

func canonicalize(m map[string]any) (any, bool) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, false
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}
