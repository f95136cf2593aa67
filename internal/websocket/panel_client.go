package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/callvox/painel/backend/internal/types"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the panel
	panelWriteWait = 10 * time.Second

	// Time allowed to read the next pong message from the panel
	panelPongWait = 30 * time.Second

	// Send pings to panel with this period (must be less than pongWait)
	panelPingPeriod = 20 * time.Second

	// Maximum message size allowed from panel
	panelMaxMessageSize = 4096
)

// PanelClient represents a WebSocket connection from an agent's panel
type PanelClient struct {
	// Agent login, set by the register message
	login string

	// The hub this client belongs to
	hub *PanelHub

	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	// Logger
	logger zerolog.Logger

	// done channel to signal client shutdown
	done chan struct{}

	// closeOnce ensures send channel is closed only once
	closeOnce sync.Once
}

// NewPanelClient creates a new PanelClient
func NewPanelClient(hub *PanelHub, conn *websocket.Conn, logger zerolog.Logger) *PanelClient {
	return &PanelClient{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *PanelClient) readPump() {
	defer func() {
		close(c.done)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(panelMaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(panelPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(panelPongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug().Err(err).Str("login", c.login).Msg("panel websocket read error")
			}
			break
		}

		c.handleMessage(message)
	}
}

// handleMessage processes incoming messages from the panel
func (c *PanelClient) handleMessage(message []byte) {
	var msgType struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &msgType); err != nil {
		c.logger.Debug().Err(err).Msg("failed to parse message type")
		return
	}

	switch msgType.Type {
	case "register":
		var reg types.PanelRegister
		if err := json.Unmarshal(message, &reg); err != nil {
			c.logger.Debug().Err(err).Msg("failed to parse register message")
			return
		}
		if reg.Login == "" {
			c.logger.Debug().Msg("register message missing login")
			return
		}
		c.login = reg.Login
		c.logger = c.logger.With().Str("login", c.login).Logger()
		c.hub.register <- &panelRegistration{client: c, msg: &reg}

		// Send acknowledgment (non-blocking, safe if client is closing)
		ack := types.ServerAck{Type: "ack", Login: c.login}
		if data, err := json.Marshal(ack); err == nil {
			c.safeSend(data)
		}

	case "heartbeat":
		var hb types.PanelHeartbeat
		if err := json.Unmarshal(message, &hb); err != nil {
			c.logger.Debug().Err(err).Msg("failed to parse heartbeat message")
			return
		}
		c.hub.heartbeat <- &hb

	case "logout":
		var lo types.PanelLogout
		if err := json.Unmarshal(message, &lo); err != nil {
			c.logger.Debug().Err(err).Msg("failed to parse logout message")
			return
		}
		c.hub.logout <- &lo

	default:
		c.logger.Debug().Str("type", msgType.Type).Msg("unknown message type")
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *PanelClient) writePump() {
	ticker := time.NewTicker(panelPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(panelWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(panelWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start starts the client's read and write pumps
func (c *PanelClient) Start() {
	go c.writePump()
	go c.readPump()
}

// Close safely closes the client's send channel (idempotent)
func (c *PanelClient) Close() {
	c.closeOnce.Do(func() {
		defer func() {
			recover() // absorb panic if channel was already closed
		}()
		close(c.send)
	})
}

// safeSend attempts to send a message, recovering from panic if channel is closed
func (c *PanelClient) safeSend(data []byte) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			sent = false
		}
	}()

	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}
