// femtoclaw - multi-channel AI agent gateway
// License: MIT

// Package channels implements the chat connectors and the manager that
// routes outbound messages to them.
package channels

import (
	"context"
	"sync"

	"github.com/femtoclaw/femtoclaw/pkg/bus"
	"github.com/femtoclaw/femtoclaw/pkg/config"
)

// Channel is one chat connector.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) error
	IsRunning() bool
}

// MessageLengthProvider is implemented by channels with a hard message
// length limit; the manager splits longer messages before sending.
type MessageLengthProvider interface {
	MaxMessageLength() int
}

// Factory creates a channel from the gateway config.
type Factory func(cfg *config.Config, msgBus *bus.MessageBus) (Channel, error)

var (
	factoryMu sync.RWMutex
	factories = make(map[string]Factory)
)

func registerFactory(name string, f Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[name] = f
}

func getFactory(name string) (Factory, bool) {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	f, ok := factories[name]
	return f, ok
}
