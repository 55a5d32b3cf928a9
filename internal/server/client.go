package server

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"ripple-chat/internal/session"
	"ripple-chat/internal/view"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var (
	newline = []byte{'\n'}
	space   = []byte{' '}
)

// Command is one client request on the stream. Width applies to resize,
// View to setView, ID to the selection commands, Emoji to toggleReaction,
// MessageID to watchReactions.
type Command struct {
	Type      string `json:"type"`
	Width     int    `json:"width,omitempty"`
	View      string `json:"view,omitempty"`
	ID        string `json:"id,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Emoji     string `json:"emoji,omitempty"`
}

// Client is one websocket connection bound to its own session engine.
// Inbound commands drive the engine; the engine's event stream flows back
// out as JSON.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	engine   *session.Engine
	userID   string
	clientID string
	logger   *WebSocketLogger

	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, engine *session.Engine, userID, clientID string, logger *WebSocketLogger) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		engine:   engine,
		userID:   userID,
		clientID: clientID,
		logger:   logger,
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.engine.Close()
		c.conn.Close()
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.drop(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		c.hub.heartbeat(c.userID)
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket unexpected close", c.userID, c.clientID, err)
			}
			break
		}

		message = bytes.TrimSpace(bytes.Replace(message, newline, space, -1))
		if err := c.handleCommand(message); err != nil {
			c.logger.Error("websocket handle command failed", c.userID, c.clientID, err)
		}
	}
}

func (c *Client) handleCommand(message []byte) error {
	var cmd Command
	if err := json.Unmarshal(message, &cmd); err != nil {
		return err
	}

	switch cmd.Type {
	case "resize":
		c.engine.Resize(cmd.Width)
	case "setView":
		c.engine.SetView(view.ViewName(cmd.View))
	case "selectChannel":
		c.engine.SelectChannel(cmd.ID)
	case "selectDirectMessage":
		c.engine.SelectDMUser(cmd.ID)
	case "openThread":
		c.engine.OpenThread(cmd.ID)
	case "closeThread":
		c.engine.CloseThread()
	case "watchReactions":
		c.engine.WatchMessageReactions(cmd.ID, cmd.MessageID)
	case "toggleReaction":
		c.engine.ToggleReaction(cmd.Emoji)
	default:
		c.logger.Warn("unknown command type", c.userID, c.clientID, zap.String("cmd_type", cmd.Type))
	}
	return nil
}

// writePump serializes engine events onto the connection and keeps the
// ping/pong heartbeat alive. It exits when the engine's event channel
// closes or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.engine.Events():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				c.logger.Error("event marshal failed", c.userID, c.clientID, err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
