package ami

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/callvox/painel/backend/internal/metrics"
	"github.com/rs/zerolog"
)

// EventHandler receives one parsed AMI event frame.
type EventHandler func(event map[string]string)

// Config holds the manager-interface connection settings.
type Config struct {
	Addr     string
	Username string
	Secret   string
}

// Client maintains a TCP connection to the PBX manager interface, feeding
// parsed event frames to a handler and writing action frames on demand.
// Reconnection is the client's own responsibility: the read loop retries
// with backoff until the context is cancelled, and the downstream
// pipeline keeps its last known state while the link is down.
type Client struct {
	cfg     Config
	handler EventHandler
	logger  zerolog.Logger

	mu   sync.Mutex
	conn net.Conn
}

// NewClient creates a client. The handler is invoked from the read loop
// goroutine, one event at a time.
func NewClient(cfg Config, handler EventHandler, logger zerolog.Logger) *Client {
	return &Client{
		cfg:     cfg,
		handler: handler,
		logger:  logger.With().Str("component", "ami").Logger(),
	}
}

// Run connects and reads events until the context is cancelled,
// reconnecting with capped backoff on any transport failure.
func (c *Client) Run(ctx context.Context) {
	backoff := time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		err := c.connectAndRead(ctx)
		if ctx.Err() != nil {
			return
		}

		c.logger.Error().Err(err).Dur("retry_in", backoff).Msg("manager connection lost")
		metrics.Get().RecordFeedReconnect()

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (c *Client) connectAndRead(ctx context.Context) error {
	conn, err := net.DialTimeout("tcp", c.cfg.Addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dial manager: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
		conn.Close()
	}()

	login := fmt.Sprintf(
		"Action: Login\r\nUsername: %s\r\nSecret: %s\r\nEvents: on\r\n\r\n",
		c.cfg.Username, c.cfg.Secret,
	)
	if _, err := conn.Write([]byte(login)); err != nil {
		return fmt.Errorf("manager login: %w", err)
	}

	c.logger.Info().Str("addr", c.cfg.Addr).Msg("manager connected")

	// Prime the full queue state; the PBX answers with one event frame
	// per queue member plus the per-queue parameter frames.
	if err := c.writeFrame("Action: QueueStatus\r\n\r\n"); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	reader := bufio.NewReader(conn)
	event := make(map[string]string)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("manager read: %w", err)
		}
		line = strings.TrimSpace(line)

		// blank line terminates a frame
		if line == "" {
			if _, ok := event["Event"]; ok {
				c.handler(event)
			}
			event = make(map[string]string)
			continue
		}

		if key, value, found := strings.Cut(line, ":"); found {
			event[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
	}
}

func (c *Client) writeFrame(frame string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("manager not connected")
	}
	if _, err := conn.Write([]byte(frame)); err != nil {
		return fmt.Errorf("manager write: %w", err)
	}
	return nil
}

// QueuePause pauses or unpauses a member interface, optionally scoped to
// one queue (empty queue applies to all memberships), with a reason shown
// on the supervisor dashboard.
func (c *Client) QueuePause(iface, queue, reason string, paused bool) error {
	var b strings.Builder
	b.WriteString("Action: QueuePause\r\n")
	fmt.Fprintf(&b, "Interface: %s\r\n", iface)
	if queue != "" {
		fmt.Fprintf(&b, "Queue: %s\r\n", queue)
	}
	if reason != "" {
		fmt.Fprintf(&b, "Reason: %s\r\n", reason)
	}
	flag := "false"
	if paused {
		flag = "true"
	}
	fmt.Fprintf(&b, "Paused: %s\r\n\r\n", flag)

	return c.writeFrame(b.String())
}

// RequestQueueStatus re-requests the full queue state, used after a
// metadata refresh to resynchronize the dashboard.
func (c *Client) RequestQueueStatus() error {
	return c.writeFrame("Action: QueueStatus\r\n\r\n")
}
