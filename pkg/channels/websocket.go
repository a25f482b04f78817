// femtoclaw - multi-channel AI agent gateway
// License: MIT

package channels

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/femtoclaw/femtoclaw/pkg/bus"
	"github.com/femtoclaw/femtoclaw/pkg/config"
	"github.com/femtoclaw/femtoclaw/pkg/logger"
)

// wsIncoming is the JSON message a client sends to the gateway.
type wsIncoming struct {
	Content  string `json:"content"`
	SenderID string `json:"sender_id,omitempty"`
}

// wsOutgoing is the JSON message the gateway sends back.
type wsOutgoing struct {
	Content string `json:"content"`
}

// WebSocketChannel is a server-side WebSocket connector. Each client
// connection gets its own chat ID, so every client is its own session.
type WebSocketChannel struct {
	*BaseChannel
	config    config.WebSocketConfig
	server    *http.Server
	upgrader  websocket.Upgrader
	chatConns map[string]*websocket.Conn // chatID -> conn
	mu        sync.RWMutex
}

func init() {
	registerFactory("websocket", func(cfg *config.Config, msgBus *bus.MessageBus) (Channel, error) {
		return NewWebSocketChannel(cfg.Channels.WebSocket, msgBus)
	})
}

func NewWebSocketChannel(cfg config.WebSocketConfig, msgBus *bus.MessageBus) (*WebSocketChannel, error) {
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	return &WebSocketChannel{
		BaseChannel: NewBaseChannel("websocket", cfg, msgBus, cfg.AllowFrom),
		config:      cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		chatConns: make(map[string]*websocket.Conn),
	}, nil
}

func (c *WebSocketChannel) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc(c.config.Path, c.handleWS)

	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	c.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	c.setRunning(true)
	logger.InfoCF("websocket", "WebSocket server listening", map[string]any{
		"addr": addr,
		"path": c.config.Path,
	})

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorCF("websocket", "Server error", map[string]any{
				"error": err.Error(),
			})
		}
	}()

	return nil
}

func (c *WebSocketChannel) Stop(ctx context.Context) error {
	c.setRunning(false)

	c.mu.Lock()
	for chatID, conn := range c.chatConns {
		conn.Close()
		delete(c.chatConns, chatID)
	}
	c.mu.Unlock()

	if c.server != nil {
		return c.server.Shutdown(ctx)
	}
	return nil
}

func (c *WebSocketChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	c.mu.RLock()
	conn, ok := c.chatConns[msg.ChatID]
	c.mu.RUnlock()

	if !ok {
		return fmt.Errorf("no client connected for chat %q", msg.ChatID)
	}
	return conn.WriteJSON(wsOutgoing{Content: msg.Content})
}

func (c *WebSocketChannel) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.ErrorCF("websocket", "Upgrade failed", map[string]any{
			"error": err.Error(),
		})
		return
	}

	chatID := uuid.NewString()
	c.mu.Lock()
	c.chatConns[chatID] = conn
	c.mu.Unlock()

	logger.InfoCF("websocket", "Client connected", map[string]any{
		"chat_id": chatID,
	})

	defer func() {
		c.mu.Lock()
		delete(c.chatConns, chatID)
		c.mu.Unlock()
		conn.Close()
		logger.InfoCF("websocket", "Client disconnected", map[string]any{
			"chat_id": chatID,
		})
	}()

	for {
		var in wsIncoming
		if err := conn.ReadJSON(&in); err != nil {
			return
		}

		senderID := in.SenderID
		if senderID == "" {
			senderID = chatID
		}
		c.HandleMessage(senderID, chatID, in.Content, nil, nil)
	}
}
