package tools

import (
	"context"

	"github.com/femtoclaw/femtoclaw/pkg/bus"
)

// MessageTool sends a message to a chat over the originating channel.
type MessageTool struct {
	bus     *bus.MessageBus
	channel string
	chatID  string
}

func NewMessageTool(msgBus *bus.MessageBus) *MessageTool {
	return &MessageTool{bus: msgBus}
}

func (t *MessageTool) Name() string { return "message" }

func (t *MessageTool) Description() string {
	return "Send a message to the current chat, or to another chat on the same channel."
}

func (t *MessageTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type":        "string",
				"description": "The message text to send",
			},
			"chat_id": map[string]any{
				"type":        "string",
				"description": "Optional target chat, defaults to the current one",
			},
		},
		"required": []string{"content"},
	}
}

// SetContext implements ContextualTool.
func (t *MessageTool) SetContext(channel, chatID string) {
	t.channel = channel
	t.chatID = chatID
}

func (t *MessageTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	content, ok := args["content"].(string)
	if !ok || content == "" {
		return ErrorResult("content is required")
	}
	if t.channel == "" {
		return ErrorResult("no originating channel for this call")
	}

	chatID := t.chatID
	if override, ok := args["chat_id"].(string); ok && override != "" {
		chatID = override
	}

	t.bus.PublishOutbound(bus.OutboundMessage{
		Channel: t.channel,
		ChatID:  chatID,
		Content: content,
	})
	return SilentResult("message sent")
}
