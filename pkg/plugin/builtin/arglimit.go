// femtoclaw - multi-channel AI agent gateway
// License: MIT

// Package builtin holds the plugins compiled into the gateway binary.
package builtin

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/femtoclaw/femtoclaw/pkg/hooks"
	"github.com/femtoclaw/femtoclaw/pkg/plugin"
)

// ArgLimitConfig controls the arglimit plugin.
type ArgLimitConfig struct {
	BlockedTools      []string
	MaxTimeoutSeconds int
}

// ArgLimitStats provides evidence that hook paths were executed.
type ArgLimitStats struct {
	ToolCalls    int
	BlockedCalls int
	ClampedCalls int
}

// ArgLimitPlugin enforces per-call argument limits: it vetoes tool calls on
// its blocklist and clamps oversized timeout arguments through a parameter
// patch.
type ArgLimitPlugin struct {
	blocked    map[string]struct{}
	maxTimeout int

	mu    sync.Mutex
	stats ArgLimitStats
}

func NewArgLimitPlugin(cfg ArgLimitConfig) *ArgLimitPlugin {
	blocked := make(map[string]struct{}, len(cfg.BlockedTools))
	for _, t := range cfg.BlockedTools {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		blocked[t] = struct{}{}
	}

	maxTimeout := cfg.MaxTimeoutSeconds
	if maxTimeout < 0 {
		maxTimeout = 0
	}

	return &ArgLimitPlugin{blocked: blocked, maxTimeout: maxTimeout}
}

func (p *ArgLimitPlugin) Name() string       { return "arglimit" }
func (p *ArgLimitPlugin) APIVersion() string { return plugin.APIVersion }

func (p *ArgLimitPlugin) Snapshot() ArgLimitStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *ArgLimitPlugin) Register(r *hooks.HookRegistry) error {
	r.OnBeforeToolCall("arglimit", func(_ context.Context, e *hooks.ToolCallEvent) (*hooks.ToolCallDecision, error) {
		p.mu.Lock()
		p.stats.ToolCalls++
		p.mu.Unlock()

		if _, blocked := p.blocked[e.ToolName]; blocked {
			p.mu.Lock()
			p.stats.BlockedCalls++
			p.mu.Unlock()
			return &hooks.ToolCallDecision{
				Block:       true,
				BlockReason: fmt.Sprintf("tool %q is blocked by the arglimit plugin", e.ToolName),
			}, nil
		}

		if p.maxTimeout > 0 {
			patch := map[string]any{}
			for _, key := range []string{"timeout", "timeout_seconds"} {
				if n, ok := toSeconds(e.Params[key]); ok && n > p.maxTimeout {
					patch[key] = p.maxTimeout
				}
			}
			if len(patch) > 0 {
				p.mu.Lock()
				p.stats.ClampedCalls++
				p.mu.Unlock()
				return &hooks.ToolCallDecision{Params: patch}, nil
			}
		}

		return nil, nil
	})
	return nil
}

func toSeconds(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
