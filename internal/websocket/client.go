package websocket

import (
	"time"

	"github.com/callvox/painel/backend/internal/auth"
	"github.com/callvox/painel/backend/internal/config"
	"github.com/callvox/painel/backend/internal/pipeline"
	"github.com/callvox/painel/backend/internal/types"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Client is a middleman between the websocket connection and the hub
type Client struct {
	// Unique client ID
	id string

	// The hub this client belongs to
	hub *Hub

	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	// Configuration
	config *config.Config

	// Logger
	logger zerolog.Logger

	// User claims with allowed queues for filtering
	claims *auth.Claims
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, cfg *config.Config, logger zerolog.Logger, claims *auth.Claims) *Client {
	clientID := uuid.New().String()
	return &Client{
		id:     clientID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		config: cfg,
		logger: logger.With().Str("client_id", clientID).Logger(),
		claims: claims,
	}
}

// readPump pumps messages from the websocket connection to the hub
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("websocket read error")
			}
			break
		}
		c.logger.Debug().Str("message", string(message)).Msg("received message from client")
	}
}

// writePump pumps messages from the hub to the websocket connection
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start starts the client's read and write pumps
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// FilterSnapshot restricts a snapshot to the queues the client's claims
// allow. Returns the original snapshot when the client is unrestricted.
func (c *Client) FilterSnapshot(snap *types.Snapshot) *types.Snapshot {
	if c.claims == nil || c.claims.AllowedQueues == nil {
		return snap
	}

	queues := make([]types.TransformedQueue, 0, len(snap.Queues))
	for _, q := range snap.Queues {
		if c.claims.IsQueueAllowed(q.ID) {
			queues = append(queues, q)
		}
	}

	// An agent stays visible if any of its queue memberships is allowed.
	agents := make([]types.AgentView, 0, len(snap.Agents))
	for _, agent := range snap.Agents {
		for _, ref := range agent.Queues {
			if c.claims.IsQueueAllowed(ref.ID) {
				agents = append(agents, agent)
				break
			}
		}
	}

	return &types.Snapshot{
		Type:      snap.Type,
		Timestamp: snap.Timestamp,
		Queues:    queues,
		Agents:    agents,
		Stats:     pipeline.ComputeStats(agents, queues),
	}
}
