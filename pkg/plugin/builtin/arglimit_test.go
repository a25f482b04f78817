// femtoclaw - multi-channel AI agent gateway
// License: MIT

package builtin

import (
	"context"
	"testing"

	"github.com/femtoclaw/femtoclaw/pkg/hooks"
)

func TestArgLimitBlocksListedTool(t *testing.T) {
	p := NewArgLimitPlugin(ArgLimitConfig{BlockedTools: []string{"Exec"}})
	r := hooks.NewHookRegistry()
	if err := p.Register(r); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	decision, err := r.RunBeforeToolCall(context.Background(), &hooks.ToolCallEvent{ToolName: "exec"})
	if err != nil {
		t.Fatalf("RunBeforeToolCall() error = %v", err)
	}
	if decision == nil || !decision.Block {
		t.Fatal("expected block for listed tool")
	}

	stats := p.Snapshot()
	if stats.ToolCalls != 1 || stats.BlockedCalls != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestArgLimitClampsTimeout(t *testing.T) {
	p := NewArgLimitPlugin(ArgLimitConfig{MaxTimeoutSeconds: 60})
	r := hooks.NewHookRegistry()
	if err := p.Register(r); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	decision, err := r.RunBeforeToolCall(context.Background(), &hooks.ToolCallEvent{
		ToolName: "exec",
		Params:   map[string]any{"command": "sleep 1000", "timeout": float64(900)},
	})
	if err != nil {
		t.Fatalf("RunBeforeToolCall() error = %v", err)
	}
	if decision == nil || decision.Params == nil {
		t.Fatal("expected a parameter patch")
	}
	if got := decision.Params["timeout"]; got != 60 {
		t.Fatalf("timeout = %v, want 60", got)
	}
	if got := decision.Params["command"]; got != "sleep 1000" {
		t.Fatalf("command = %v, want preserved", got)
	}
}

func TestArgLimitNoOpinionWithinLimit(t *testing.T) {
	p := NewArgLimitPlugin(ArgLimitConfig{MaxTimeoutSeconds: 60})
	r := hooks.NewHookRegistry()
	if err := p.Register(r); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	decision, err := r.RunBeforeToolCall(context.Background(), &hooks.ToolCallEvent{
		ToolName: "exec",
		Params:   map[string]any{"timeout": 30},
	})
	if err != nil {
		t.Fatalf("RunBeforeToolCall() error = %v", err)
	}
	if decision == nil {
		t.Fatal("expected fold result")
	}
	if decision.Block || decision.Params != nil {
		t.Fatalf("expected no opinion, got %+v", decision)
	}
}

func TestCatalogFactories(t *testing.T) {
	catalog := Catalog()
	for name, factory := range catalog {
		if factory == nil {
			t.Fatalf("Catalog()[%q] factory is nil", name)
		}
		p := factory()
		if p == nil {
			t.Fatalf("Catalog()[%q]() returned nil plugin", name)
		}
		if p.Name() != name {
			t.Fatalf("plugin name %q does not match catalog key %q", p.Name(), name)
		}
	}
}
