// femtoclaw - multi-channel AI agent gateway
// License: MIT

package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendMessage(ctx, "telegram:1", Message{Role: "user", Content: "hi"}))
	require.NoError(t, store.AppendMessage(ctx, "telegram:1", Message{Role: "assistant", Content: "hello"}))
	require.NoError(t, store.AppendMessage(ctx, "discord:2", Message{Role: "user", Content: "other session"}))

	history, err := store.History(ctx, "telegram:1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, "hello", history[1].Content)
}

func TestHistoryLimitKeepsNewest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three"} {
		require.NoError(t, store.AppendMessage(ctx, "k", Message{Role: "user", Content: content}))
	}

	history, err := store.History(ctx, "k", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "two", history[0].Content)
	assert.Equal(t, "three", history[1].Content)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AppendMessage(ctx, "k", Message{Role: "user", Content: "x"}))
	require.NoError(t, store.Clear(ctx, "k"))

	history, err := store.History(ctx, "k", 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestToolCallAudit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordToolCall(ctx, ToolCallRecord{
		ToolCallID: "call-1",
		SessionKey: "telegram:1",
		AgentID:    "main",
		ToolName:   "exec",
		Blocked:    true,
		Reason:     "blocked by security coach",
	}))
	require.NoError(t, store.RecordToolCall(ctx, ToolCallRecord{
		ToolCallID: "call-2",
		SessionKey: "telegram:1",
		AgentID:    "main",
		ToolName:   "read_file",
	}))

	records, err := store.ToolCalls(ctx, "telegram:1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	byID := map[string]ToolCallRecord{}
	for _, r := range records {
		byID[r.ToolCallID] = r
	}
	assert.True(t, byID["call-1"].Blocked)
	assert.Equal(t, "blocked by security coach", byID["call-1"].Reason)
	assert.False(t, byID["call-2"].Blocked)
}

func TestDuplicateToolCallIDRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := ToolCallRecord{ToolCallID: "dup", SessionKey: "k", AgentID: "a", ToolName: "exec"}
	require.NoError(t, store.RecordToolCall(ctx, rec))
	assert.Error(t, store.RecordToolCall(ctx, rec))
}
