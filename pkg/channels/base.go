// femtoclaw - multi-channel AI agent gateway
// License: MIT

package channels

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/femtoclaw/femtoclaw/pkg/bus"
	"github.com/femtoclaw/femtoclaw/pkg/logger"
)

// BaseChannel carries the state shared by every connector: name, allowlist,
// the bus, and the running flag.
type BaseChannel struct {
	name      string
	bus       *bus.MessageBus
	allowFrom []string
	running   atomic.Bool
}

func NewBaseChannel(name string, cfg any, msgBus *bus.MessageBus, allowFrom []string) *BaseChannel {
	_ = cfg
	return &BaseChannel{
		name:      name,
		bus:       msgBus,
		allowFrom: allowFrom,
	}
}

func (b *BaseChannel) Name() string { return b.name }

func (b *BaseChannel) IsRunning() bool { return b.running.Load() }

func (b *BaseChannel) setRunning(v bool) { b.running.Store(v) }

// IsAllowed checks a sender against the allowlist. An empty allowlist allows
// everyone. Both sender IDs and allowlist entries may be compound
// "id|username" values; a leading @ on an allowlist entry is ignored, so
// "@alice" matches the username part.
func (b *BaseChannel) IsAllowed(senderID string) bool {
	if len(b.allowFrom) == 0 {
		return true
	}

	senderParts := splitIdentity(senderID)
	for _, entry := range b.allowFrom {
		for _, allowPart := range splitIdentity(entry) {
			for _, senderPart := range senderParts {
				if allowPart == senderPart {
					return true
				}
			}
		}
	}
	return false
}

func splitIdentity(id string) []string {
	parts := strings.Split(id, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimPrefix(strings.TrimSpace(p), "@")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// HandleMessage screens an inbound message against the allowlist and
// publishes it on the bus.
func (b *BaseChannel) HandleMessage(senderID, chatID, content string, media []string, metadata map[string]string) {
	if !b.IsAllowed(senderID) {
		logger.DebugCF(b.name, "Message rejected by allowlist", map[string]any{
			"sender_id": senderID,
		})
		return
	}

	if len(media) > 0 {
		if metadata == nil {
			metadata = make(map[string]string)
		}
		metadata["media"] = strings.Join(media, ",")
	}

	b.bus.PublishInbound(bus.InboundMessage{
		Channel:    b.name,
		SenderID:   senderID,
		ChatID:     chatID,
		Content:    content,
		SessionKey: fmt.Sprintf("%s:%s", b.name, chatID),
		Metadata:   metadata,
	})
}
