package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// amisim is a fake Asterisk Manager Interface server for local
// development. It answers Login and QueueStatus actions and emits a
// stream of queue member status changes so the backend can be run
// without a PBX.

type member struct {
	login  string
	name   string
	ramal  string
	queue  string
	status string
	paused bool
	reason string
}

type queueStats struct {
	talkTime  int
	holdTime  int
	completed int
	abandoned int
	calls     int
}

type simulator struct {
	mu      sync.Mutex
	members []*member
	stats   map[string]*queueStats
	conns   map[net.Conn]bool
	rng     *rand.Rand
	logger  zerolog.Logger
}

var queues = []string{"100", "200", "300"}

var firstNames = []string{"Ana", "Bruno", "Carla", "Davi", "Elisa", "Fábio", "Gabriela", "Hugo", "Iara", "João", "Karen", "Lucas"}
var lastNames = []string{"Silva", "Souza", "Oliveira", "Santos", "Pereira", "Costa", "Almeida", "Ferreira"}

var pauseReasons = []string{"Almoço", "Café", "Treinamento", "Feedback"}

func newSimulator(agentCount int, seed int64, logger zerolog.Logger) *simulator {
	s := &simulator{
		stats:  make(map[string]*queueStats),
		conns:  make(map[net.Conn]bool),
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}

	for _, q := range queues {
		s.stats[q] = &queueStats{}
	}

	for i := 0; i < agentCount; i++ {
		first := firstNames[s.rng.Intn(len(firstNames))]
		last := lastNames[s.rng.Intn(len(lastNames))]
		m := &member{
			login:  fmt.Sprintf("agent%03d", i+1),
			name:   first + " " + last,
			ramal:  fmt.Sprintf("%d", 1001+i),
			queue:  queues[i%len(queues)],
			status: "1",
		}
		s.members = append(s.members, m)

		// A third of the agents also work a second queue
		if i%3 == 0 {
			second := *m
			second.queue = queues[(i+1)%len(queues)]
			s.members = append(s.members, &second)
		}
	}

	return s
}

func (s *simulator) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	paramsEvery := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.step()
			paramsEvery++
			if paramsEvery >= 5 {
				paramsEvery = 0
				s.broadcastParams()
			}
		}
	}
}

// step mutates one random member and broadcasts the resulting event.
func (s *simulator) step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.members) == 0 {
		return
	}
	m := s.members[s.rng.Intn(len(s.members))]

	switch s.rng.Intn(10) {
	case 0, 1:
		// Flip pause state
		m.paused = !m.paused
		if m.paused {
			m.status = "1"
			m.reason = pauseReasons[s.rng.Intn(len(pauseReasons))]
		} else {
			m.reason = ""
		}
		s.broadcastLocked(s.pauseFrame(m))

	case 2:
		// Call completed
		st := s.stats[m.queue]
		st.completed++
		st.talkTime = 120 + s.rng.Intn(300)
		st.holdTime = 10 + s.rng.Intn(60)
		m.status = "1"
		s.broadcastLocked(s.statusFrame(m))

	case 3:
		// Caller gave up
		st := s.stats[m.queue]
		st.abandoned++
		if st.calls > 0 {
			st.calls--
		}

	default:
		// Status churn: ringing, talking, back to available
		next := []string{"1", "2", "2", "5", "6", "8"}
		m.status = next[s.rng.Intn(len(next))]
		if m.status == "6" {
			s.stats[m.queue].calls += s.rng.Intn(2)
		}
		s.broadcastLocked(s.statusFrame(m))
	}
}

func (s *simulator) statusFrame(m *member) string {
	return frame(
		"Event: QueueMemberStatus",
		"Queue: "+m.queue,
		"MemberName: "+m.login+":"+m.name,
		"Interface: SIP/"+m.ramal,
		"Status: "+m.status,
		"Paused: "+boolFlag(m.paused),
	)
}

func (s *simulator) pauseFrame(m *member) string {
	lines := []string{
		"Event: QueueMemberPause",
		"Queue: " + m.queue,
		"MemberName: " + m.login + ":" + m.name,
		"Interface: SIP/" + m.ramal,
		"Paused: " + boolFlag(m.paused),
	}
	if m.reason != "" {
		lines = append(lines, "Reason: "+m.reason)
	}
	return frame(lines...)
}

func (s *simulator) paramsFrame(q string, st *queueStats) string {
	return frame(
		"Event: QueueParams",
		"Queue: "+q,
		fmt.Sprintf("Calls: %d", st.calls),
		fmt.Sprintf("Holdtime: %d", st.holdTime),
		fmt.Sprintf("TalkTime: %d", st.talkTime),
		fmt.Sprintf("Completed: %d", st.completed),
		fmt.Sprintf("Abandoned: %d", st.abandoned),
	)
}

func (s *simulator) broadcastParams() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range queues {
		s.broadcastLocked(s.paramsFrame(q, s.stats[q]))
	}
}

func (s *simulator) broadcastLocked(payload string) {
	for conn := range s.conns {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if _, err := conn.Write([]byte(payload)); err != nil {
			s.logger.Debug().Err(err).Msg("dropping dead connection")
			conn.Close()
			delete(s.conns, conn)
		}
	}
}

// dumpQueueStatus replays the full roster to one connection, the way
// Asterisk answers a QueueStatus action.
func (s *simulator) dumpQueueStatus(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range queues {
		conn.Write([]byte(s.paramsFrame(q, s.stats[q])))
	}
	for _, m := range s.members {
		conn.Write([]byte(frame(
			"Event: QueueMember",
			"Queue: "+m.queue,
			"MemberName: "+m.login+":"+m.name,
			"Interface: SIP/"+m.ramal,
			"Status: "+m.status,
			"Paused: "+boolFlag(m.paused),
		)))
	}
	conn.Write([]byte(frame("Event: QueueStatusComplete")))
}

// handlePause applies a QueuePause action from the backend.
func (s *simulator) handlePause(action map[string]string) {
	iface := action["Interface"]
	queue := action["Queue"]
	paused := action["Paused"] == "true" || action["Paused"] == "1"
	reason := action["Reason"]

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if "SIP/"+m.ramal != iface {
			continue
		}
		if queue != "" && m.queue != queue {
			continue
		}
		m.paused = paused
		m.reason = reason
		if paused {
			m.status = "1"
		}
		s.broadcastLocked(s.pauseFrame(m))
	}
}

func (s *simulator) serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.logger.Info().Str("addr", addr).Msg("amisim listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *simulator) handleConn(ctx context.Context, conn net.Conn) {
	s.logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("client connected")
	conn.Write([]byte("Asterisk Call Manager/5.0.3\r\n"))

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
		s.logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("client disconnected")
	}()

	reader := bufio.NewReader(conn)
	action := make(map[string]string)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		if line != "" {
			if key, value, ok := strings.Cut(line, ":"); ok {
				action[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
			continue
		}

		s.handleAction(conn, action)
		action = make(map[string]string)
	}
}

func (s *simulator) handleAction(conn net.Conn, action map[string]string) {
	switch action["Action"] {
	case "Login":
		conn.Write([]byte(frame("Response: Success", "Message: Authentication accepted")))
		s.mu.Lock()
		s.conns[conn] = true
		s.mu.Unlock()

	case "QueueStatus":
		conn.Write([]byte(frame("Response: Success", "Message: Queue status will follow")))
		s.dumpQueueStatus(conn)

	case "QueuePause":
		conn.Write([]byte(frame("Response: Success", "Message: Pause state changed")))
		s.handlePause(action)

	case "Ping":
		conn.Write([]byte(frame("Response: Success", "Ping: Pong")))

	default:
		conn.Write([]byte(frame("Response: Error", "Message: Unknown action")))
	}
}

func frame(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n\r\n"
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func main() {
	var (
		addr       = flag.String("addr", ":5038", "listen address")
		agentCount = flag.Int("agents", 30, "number of agents to simulate")
		intervalMS = flag.Int("interval", 700, "event interval in milliseconds")
		logLevel   = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Str("service", "amisim").
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sim := newSimulator(*agentCount, time.Now().UnixNano(), logger)
	go sim.run(ctx, time.Duration(*intervalMS)*time.Millisecond)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info().Msg("shutting down")
		cancel()
	}()

	if err := sim.serve(ctx, *addr); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
