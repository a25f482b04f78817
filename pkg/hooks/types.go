// femtoclaw - multi-channel AI agent gateway
// License: MIT

package hooks

import "context"

// MessageReceivedEvent is fired when an inbound message is consumed from the
// bus.
type MessageReceivedEvent struct {
	Channel  string
	SenderID string
	ChatID   string
	Content  string
	Metadata map[string]string
}

// MessageSendingEvent is fired before an outbound message is published.
// Handlers can modify Content or set Cancel to block delivery.
type MessageSendingEvent struct {
	Channel      string
	ChatID       string
	Content      string // modifiable
	Cancel       bool
	CancelReason string
}

// ToolCallEvent is the payload passed to before-tool-call hooks. ToolName is
// the canonical tool name; Params is the running parameter set. The event is
// read-only for handlers: mutations are expressed through the returned
// ToolCallDecision, never by writing to the event.
type ToolCallEvent struct {
	ToolName   string
	Params     map[string]any
	ToolCallID string
	AgentID    string
	SessionKey string
}

// ToolCallDecision is what a before-tool-call hook returns. A nil decision
// means "no opinion". Block takes precedence over Params when both are set in
// the same decision. Params is a partial patch, shallow-merged over the
// running parameter set.
type ToolCallDecision struct {
	Block       bool
	BlockReason string
	Params      map[string]any
}

// BeforeToolCallHook observes, vetoes, or patches a pending tool call.
type BeforeToolCallHook func(ctx context.Context, event *ToolCallEvent) (*ToolCallDecision, error)

// MessageHook is the callback signature for message lifecycle hooks.
type MessageHook[T any] func(ctx context.Context, event *T) error
