// femtoclaw - multi-channel AI agent gateway
// License: MIT

// Package hooks manages the registry of third-party lifecycle hooks. Plugins
// register handlers here; the gateway triggers them at the corresponding
// lifecycle points.
package hooks

import (
	"context"
	"fmt"
	"sync"

	"github.com/femtoclaw/femtoclaw/pkg/logger"
)

// registration tracks a named handler in registration order.
type registration[T any] struct {
	name    string
	handler T
}

// HookRegistry manages all lifecycle hooks. Before-tool-call hooks run
// sequentially in registration order; message hooks follow the same model as
// delivery interceptors.
type HookRegistry struct {
	beforeToolCall  []registration[BeforeToolCallHook]
	messageReceived []registration[MessageHook[MessageReceivedEvent]]
	messageSending  []registration[MessageHook[MessageSendingEvent]]
	mu              sync.RWMutex
}

func NewHookRegistry() *HookRegistry {
	return &HookRegistry{}
}

// OnBeforeToolCall registers a hook to run before every tool execution.
// Hooks run in registration order. The full slice expression forces a new
// backing array so concurrent readers of the old slice are safe.
func (r *HookRegistry) OnBeforeToolCall(name string, handler BeforeToolCallHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeToolCall = append(r.beforeToolCall[:len(r.beforeToolCall):len(r.beforeToolCall)],
		registration[BeforeToolCallHook]{name: name, handler: handler})
}

func (r *HookRegistry) OnMessageReceived(name string, handler MessageHook[MessageReceivedEvent]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messageReceived = append(r.messageReceived[:len(r.messageReceived):len(r.messageReceived)],
		registration[MessageHook[MessageReceivedEvent]]{name: name, handler: handler})
}

func (r *HookRegistry) OnMessageSending(name string, handler MessageHook[MessageSendingEvent]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messageSending = append(r.messageSending[:len(r.messageSending):len(r.messageSending)],
		registration[MessageHook[MessageSendingEvent]]{name: name, handler: handler})
}

// HasBeforeToolCallHooks reports whether any before-tool-call hook is
// registered, so callers can skip the chain entirely.
func (r *HookRegistry) HasBeforeToolCallHooks() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.beforeToolCall) > 0
}

// RunBeforeToolCall runs the registered before-tool-call hooks in order and
// folds their decisions:
//   - the first hook that blocks short-circuits the chain with its reason;
//   - parameter patches are shallow-merged, in order, over the running set;
//   - the merged set is returned only when at least one hook patched it.
//
// A handler that returns an error or panics aborts the chain with an error;
// the caller decides what that failure means.
func (r *HookRegistry) RunBeforeToolCall(ctx context.Context, event *ToolCallEvent) (*ToolCallDecision, error) {
	r.mu.RLock()
	chain := r.beforeToolCall
	r.mu.RUnlock()

	if len(chain) == 0 {
		return nil, nil
	}

	var merged map[string]any
	running := event.Params

	for _, reg := range chain {
		decision, err := runHandler(ctx, reg, &ToolCallEvent{
			ToolName:   event.ToolName,
			Params:     running,
			ToolCallID: event.ToolCallID,
			AgentID:    event.AgentID,
			SessionKey: event.SessionKey,
		})
		if err != nil {
			return nil, fmt.Errorf("hook %q: %w", reg.name, err)
		}
		if decision == nil {
			continue
		}
		if decision.Block {
			return &ToolCallDecision{Block: true, BlockReason: decision.BlockReason}, nil
		}
		if len(decision.Params) > 0 {
			if merged == nil {
				merged = make(map[string]any, len(running)+len(decision.Params))
				for k, v := range running {
					merged[k] = v
				}
			}
			for k, v := range decision.Params {
				merged[k] = v
			}
			running = merged
		}
	}

	if merged == nil {
		return &ToolCallDecision{}, nil
	}
	return &ToolCallDecision{Params: merged}, nil
}

// runHandler invokes one hook, converting panics into errors so a broken
// plugin cannot take the gateway down.
func runHandler(ctx context.Context, reg registration[BeforeToolCallHook], event *ToolCallEvent) (decision *ToolCallDecision, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			decision = nil
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return reg.handler(ctx, event)
}

// TriggerMessageReceived fires all message_received handlers sequentially.
// Handler errors are logged, never propagated.
func (r *HookRegistry) TriggerMessageReceived(ctx context.Context, event *MessageReceivedEvent) {
	r.mu.RLock()
	chain := r.messageReceived
	r.mu.RUnlock()

	for _, reg := range chain {
		if err := safeCall(ctx, reg.handler, event); err != nil {
			logger.WarnCF("hooks", "Hook error", map[string]any{
				"hook":    "message_received",
				"handler": reg.name,
				"error":   err.Error(),
			})
		}
	}
}

// TriggerMessageSending fires message_sending handlers in order, stopping if
// a handler cancels delivery.
func (r *HookRegistry) TriggerMessageSending(ctx context.Context, event *MessageSendingEvent) {
	r.mu.RLock()
	chain := r.messageSending
	r.mu.RUnlock()

	for _, reg := range chain {
		if err := safeCall(ctx, reg.handler, event); err != nil {
			logger.WarnCF("hooks", "Hook error", map[string]any{
				"hook":    "message_sending",
				"handler": reg.name,
				"error":   err.Error(),
			})
		}
		if event.Cancel {
			logger.InfoCF("hooks", "Hook canceled delivery", map[string]any{
				"handler": reg.name,
			})
			return
		}
	}
}

func safeCall[T any](ctx context.Context, handler MessageHook[T], event *T) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return handler(ctx, event)
}
