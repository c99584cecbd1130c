package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/strikeplan/internal/core/agent"
	"github.com/zeusync/strikeplan/internal/core/events/bus"
	"github.com/zeusync/strikeplan/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The stream is a local debugging aid viewed from arbitrary tools.
	CheckOrigin: func(*http.Request) bool { return true },
}

const (
	writeWait   = 5 * time.Second
	clientQueue = 64
)

// Frame is one message on the debug stream.
type Frame struct {
	Type     string         `json:"type"`
	SentAt   time.Time      `json:"sent_at"`
	Decision agent.Decision `json:"decision"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// DebugStream fans agent decisions out to websocket viewers. Frames are
// dropped for viewers that fall behind; the agent never waits on them.
type DebugStream struct {
	log log.Log

	mu      sync.Mutex
	clients map[*client]struct{}
	sub     bus.Subscription

	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewDebugStream(logger log.Log) *DebugStream {
	return &DebugStream{
		log:     log.OrNop(logger).With(log.String("component", "debug_stream")),
		clients: make(map[*client]struct{}),
	}
}

// Attach subscribes the stream to decisions published on b.
func (s *DebugStream) Attach(b *bus.Bus[agent.Decision]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil && s.sub.IsActive() {
		return ErrAlreadyAttached
	}
	s.sub = b.Subscribe(agent.TopicDecision, func(e bus.Event[agent.Decision]) error {
		s.Broadcast(e.Data)
		return nil
	})
	return nil
}

// Detach cancels the bus subscription, if any.
func (s *DebugStream) Detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		s.sub.Cancel()
		s.sub = nil
	}
}

// Broadcast sends d to every connected viewer.
func (s *DebugStream) Broadcast(d agent.Decision) {
	payload, err := json.Marshal(Frame{Type: "decision", SentAt: time.Now().UTC(), Decision: d})
	if err != nil {
		s.log.Error("encode debug frame", log.Error(err), log.Uint64("tick", d.Tick))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- payload:
			s.sent.Add(1)
		default:
			s.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected viewers.
func (s *DebugStream) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Stats returns the number of frames queued and dropped so far.
func (s *DebugStream) Stats() (sent, dropped uint64) {
	return s.sent.Load(), s.dropped.Load()
}

func (s *DebugStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", log.Error(err), log.String("remote", r.RemoteAddr))
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, clientQueue)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.log.Info("viewer connected", log.String("viewer", c.id), log.String("remote", r.RemoteAddr))

	go s.writeLoop(c)
	s.readLoop(c)
}

// readLoop discards anything the viewer sends and notices when it leaves.
func (s *DebugStream) readLoop(c *client) {
	defer s.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *DebugStream) writeLoop(c *client) {
	defer c.conn.Close()
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.log.Debug("viewer write failed", log.String("viewer", c.id), log.Error(err))
			s.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

func (s *DebugStream) remove(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		c.close()
		s.log.Info("viewer disconnected", log.String("viewer", c.id))
	}
}

// closeAll disconnects every viewer.
func (s *DebugStream) closeAll() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.clients = make(map[*client]struct{})
	s.mu.Unlock()
	for _, c := range clients {
		c.close()
	}
}
