// femtoclaw - multi-channel AI agent gateway
// License: MIT

package agent

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/femtoclaw/femtoclaw/pkg/bus"
	"github.com/femtoclaw/femtoclaw/pkg/coach"
	"github.com/femtoclaw/femtoclaw/pkg/guard"
	"github.com/femtoclaw/femtoclaw/pkg/hooks"
	"github.com/femtoclaw/femtoclaw/pkg/session"
	"github.com/femtoclaw/femtoclaw/pkg/tools"
)

type echoTool struct{}

func (echoTool) Name() string        { return "echo" }
func (echoTool) Description() string { return "echoes args back" }
func (echoTool) Parameters() map[string]any {
	return map[string]any{"type": "object"}
}

func (echoTool) Execute(ctx context.Context, args map[string]any) *tools.ToolResult {
	text, _ := args["text"].(string)
	return tools.NewToolResult("echo: " + text)
}

type blockAllCoach struct{}

func (blockAllCoach) BeforeToolCall(ctx context.Context, inv *guard.ToolInvocation) (*guard.CoachVerdict, error) {
	return &guard.CoachVerdict{Block: true, BlockReason: "blocked in test"}, nil
}

func newTestLoop(t *testing.T, c guard.Coach) (*Loop, *bus.MessageBus, *session.Store) {
	t.Helper()

	msgBus := bus.NewMessageBus()
	store, err := session.NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	caps := guard.NewCapabilities()
	caps.SetCoach(c)
	gate := guard.NewGate(caps)

	registry := tools.NewGatedRegistry(func(tool tools.Tool) tools.Tool {
		return guard.WrapTool(tool, gate)
	})
	registry.Register(echoTool{})

	return NewLoop("main", msgBus, registry, hooks.NewHookRegistry(), store), msgBus, store
}

func defaultCoach(t *testing.T) guard.Coach {
	t.Helper()
	c, err := coach.New(coach.Config{})
	require.NoError(t, err)
	return c
}

func inbound(content string) bus.InboundMessage {
	return bus.InboundMessage{
		Channel:    "test",
		SenderID:   "op",
		ChatID:     "chat-1",
		Content:    content,
		SessionKey: "test:chat-1",
	}
}

func consumeReply(t *testing.T, msgBus *bus.MessageBus) bus.OutboundMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, ok := msgBus.SubscribeOutbound(ctx)
	require.True(t, ok, "expected an outbound reply")
	return msg
}

func TestLoopToolsCommand(t *testing.T) {
	loop, msgBus, _ := newTestLoop(t, defaultCoach(t))

	loop.handleMessage(context.Background(), inbound("/tools"))

	reply := consumeReply(t, msgBus)
	assert.Contains(t, reply.Content, "echo")
	assert.Equal(t, "chat-1", reply.ChatID)
}

func TestLoopRunToolAllowed(t *testing.T) {
	loop, msgBus, store := newTestLoop(t, defaultCoach(t))

	loop.handleMessage(context.Background(), inbound(`/run echo {"text": "hi"}`))

	reply := consumeReply(t, msgBus)
	assert.Equal(t, "echo: hi", reply.Content)

	records, err := store.ToolCalls(context.Background(), "test:chat-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "echo", records[0].ToolName)
	assert.False(t, records[0].Blocked)
	assert.NotEmpty(t, records[0].ToolCallID)
}

func TestLoopRunToolBlocked(t *testing.T) {
	loop, msgBus, store := newTestLoop(t, blockAllCoach{})

	loop.handleMessage(context.Background(), inbound(`/run echo {"text": "hi"}`))

	reply := consumeReply(t, msgBus)
	assert.Contains(t, reply.Content, "blocked in test")

	records, err := store.ToolCalls(context.Background(), "test:chat-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Blocked)
	assert.Equal(t, "blocked in test", records[0].Reason)
}

func TestLoopRunToolBadJSON(t *testing.T) {
	loop, msgBus, _ := newTestLoop(t, defaultCoach(t))

	loop.handleMessage(context.Background(), inbound(`/run echo {not json}`))

	reply := consumeReply(t, msgBus)
	assert.Contains(t, reply.Content, "Invalid JSON")
}

func TestLoopUnknownCommand(t *testing.T) {
	loop, msgBus, _ := newTestLoop(t, defaultCoach(t))

	loop.handleMessage(context.Background(), inbound("/bogus"))

	reply := consumeReply(t, msgBus)
	assert.Contains(t, reply.Content, "Unknown command")
}

func TestLoopHistoryAndClear(t *testing.T) {
	loop, msgBus, _ := newTestLoop(t, defaultCoach(t))
	ctx := context.Background()

	loop.handleMessage(ctx, inbound("/tools"))
	consumeReply(t, msgBus)

	loop.handleMessage(ctx, inbound("/history"))
	reply := consumeReply(t, msgBus)
	assert.Contains(t, reply.Content, "[user] /tools")

	loop.handleMessage(ctx, inbound("/clear"))
	reply = consumeReply(t, msgBus)
	assert.Equal(t, "Session cleared.", reply.Content)
}

func TestLoopSendingHookCancelsReply(t *testing.T) {
	loop, msgBus, _ := newTestLoop(t, defaultCoach(t))
	loop.hookReg.OnMessageSending("censor", func(_ context.Context, e *hooks.MessageSendingEvent) error {
		e.Cancel = true
		return nil
	})

	loop.handleMessage(context.Background(), inbound("/tools"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if msg, ok := msgBus.SubscribeOutbound(ctx); ok {
		t.Fatalf("expected cancelled reply, got %+v", msg)
	}
}

func TestLoopRunStopsOnContextCancel(t *testing.T) {
	loop, _, _ := newTestLoop(t, defaultCoach(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("loop did not stop on cancel")
	}
}
