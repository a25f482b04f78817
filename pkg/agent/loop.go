// femtoclaw - multi-channel AI agent gateway
// License: MIT

// Package agent runs the message loop: it consumes inbound messages from the
// bus, dispatches operator commands, executes tool calls through the gated
// registry, and publishes replies.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/femtoclaw/femtoclaw/pkg/bus"
	"github.com/femtoclaw/femtoclaw/pkg/guard"
	"github.com/femtoclaw/femtoclaw/pkg/hooks"
	"github.com/femtoclaw/femtoclaw/pkg/logger"
	"github.com/femtoclaw/femtoclaw/pkg/session"
	"github.com/femtoclaw/femtoclaw/pkg/tools"
)

// Loop is the agent message loop.
type Loop struct {
	agentID  string
	bus      *bus.MessageBus
	registry *tools.ToolRegistry
	hookReg  *hooks.HookRegistry
	store    *session.Store
}

func NewLoop(agentID string, msgBus *bus.MessageBus, registry *tools.ToolRegistry, hookReg *hooks.HookRegistry, store *session.Store) *Loop {
	return &Loop{
		agentID:  agentID,
		bus:      msgBus,
		registry: registry,
		hookReg:  hookReg,
		store:    store,
	}
}

// Run consumes inbound messages until the context is cancelled or the bus
// closes.
func (l *Loop) Run(ctx context.Context) error {
	logger.InfoCF("agent", "Agent loop started", map[string]any{
		"agent_id": l.agentID,
		"tools":    l.registry.Count(),
	})

	for {
		msg, ok := l.bus.ConsumeInbound(ctx)
		if !ok {
			logger.InfoC("agent", "Agent loop stopped")
			return ctx.Err()
		}
		l.handleMessage(ctx, msg)
	}
}

func (l *Loop) handleMessage(ctx context.Context, msg bus.InboundMessage) {
	l.hookReg.TriggerMessageReceived(ctx, &hooks.MessageReceivedEvent{
		Channel:  msg.Channel,
		SenderID: msg.SenderID,
		ChatID:   msg.ChatID,
		Content:  msg.Content,
		Metadata: msg.Metadata,
	})

	if l.store != nil {
		if err := l.store.AppendMessage(ctx, msg.SessionKey, session.Message{
			Role:    "user",
			Content: msg.Content,
		}); err != nil {
			logger.WarnCF("agent", "Failed to record message", map[string]any{
				"error": err.Error(),
			})
		}
	}

	reply := l.dispatch(ctx, msg)
	if reply == "" {
		return
	}
	l.reply(ctx, msg, reply)
}

func (l *Loop) dispatch(ctx context.Context, msg bus.InboundMessage) string {
	content := strings.TrimSpace(msg.Content)

	switch {
	case content == "/tools":
		return l.listTools()
	case strings.HasPrefix(content, "/run "):
		return l.runTool(ctx, msg, strings.TrimPrefix(content, "/run "))
	case content == "/history":
		return l.showHistory(ctx, msg.SessionKey)
	case content == "/clear":
		return l.clearSession(ctx, msg.SessionKey)
	case content == "/help" || content == "/start":
		return l.helpText()
	case strings.HasPrefix(content, "/"):
		return fmt.Sprintf("Unknown command %q. Try /help.", strings.Fields(content)[0])
	default:
		// No LLM is attached in this build; plain messages get the help
		// text so operators discover the command surface.
		return l.helpText()
	}
}

func (l *Loop) helpText() string {
	return strings.Join([]string{
		"femtoclaw commands:",
		"/tools - list available tools",
		"/run <tool> {json args} - execute a tool",
		"/history - show recent conversation history",
		"/clear - clear this session",
		"/help - this message",
	}, "\n")
}

func (l *Loop) listTools() string {
	summaries := l.registry.GetSummaries()
	if len(summaries) == 0 {
		return "No tools registered."
	}
	return "Available tools:\n" + strings.Join(summaries, "\n")
}

// runTool parses "<tool> {json args}" and executes the call through the
// gated registry.
func (l *Loop) runTool(ctx context.Context, msg bus.InboundMessage, rest string) string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "Usage: /run <tool> {json args}"
	}

	name := rest
	rawArgs := ""
	if idx := strings.IndexAny(rest, " \t"); idx > 0 {
		name = rest[:idx]
		rawArgs = strings.TrimSpace(rest[idx+1:])
	}

	args := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return fmt.Sprintf("Invalid JSON args: %v", err)
		}
	}

	toolCallID := uuid.NewString()
	callCtx := guard.WithCallInfo(ctx, guard.CallInfo{
		ToolCallID: toolCallID,
		AgentID:    l.agentID,
		SessionKey: msg.SessionKey,
	})

	result := l.registry.ExecuteWithContext(callCtx, name, args, msg.Channel, msg.ChatID, nil)
	l.auditToolCall(ctx, toolCallID, msg.SessionKey, name, result)

	if result == nil {
		return "Tool returned no result."
	}
	if result.ForUser != "" {
		return result.ForUser
	}
	return result.ForLLM
}

func (l *Loop) auditToolCall(ctx context.Context, toolCallID, sessionKey, toolName string, result *tools.ToolResult) {
	if l.store == nil || result == nil {
		return
	}

	rec := session.ToolCallRecord{
		ToolCallID: toolCallID,
		SessionKey: sessionKey,
		AgentID:    l.agentID,
		ToolName:   toolName,
	}
	var blockedErr *guard.BlockedError
	if result.Err != nil && errors.As(result.Err, &blockedErr) {
		rec.Blocked = true
		rec.Reason = blockedErr.Reason
	}

	if err := l.store.RecordToolCall(ctx, rec); err != nil {
		logger.WarnCF("agent", "Failed to audit tool call", map[string]any{
			"tool_call_id": toolCallID,
			"error":        err.Error(),
		})
	}
}

func (l *Loop) showHistory(ctx context.Context, sessionKey string) string {
	if l.store == nil {
		return "No session store configured."
	}

	history, err := l.store.History(ctx, sessionKey, 20)
	if err != nil {
		return fmt.Sprintf("Failed to load history: %v", err)
	}
	if len(history) == 0 {
		return "No history for this session."
	}

	var b strings.Builder
	for _, m := range history {
		fmt.Fprintf(&b, "[%s] %s\n", m.Role, m.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (l *Loop) clearSession(ctx context.Context, sessionKey string) string {
	if l.store == nil {
		return "No session store configured."
	}
	if err := l.store.Clear(ctx, sessionKey); err != nil {
		return fmt.Sprintf("Failed to clear session: %v", err)
	}
	return "Session cleared."
}

// reply runs the sending hooks and publishes the outbound message. A hook
// that cancels delivery wins.
func (l *Loop) reply(ctx context.Context, msg bus.InboundMessage, content string) {
	event := &hooks.MessageSendingEvent{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Content: content,
	}
	l.hookReg.TriggerMessageSending(ctx, event)
	if event.Cancel {
		logger.InfoCF("agent", "Outbound message cancelled by hook", map[string]any{
			"channel": msg.Channel,
			"reason":  event.CancelReason,
		})
		return
	}

	if l.store != nil {
		if err := l.store.AppendMessage(ctx, msg.SessionKey, session.Message{
			Role:    "assistant",
			Content: event.Content,
		}); err != nil {
			logger.WarnCF("agent", "Failed to record reply", map[string]any{
				"error": err.Error(),
			})
		}
	}

	l.bus.PublishOutbound(bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Content: event.Content,
	})
}
