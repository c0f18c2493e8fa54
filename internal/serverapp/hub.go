package serverapp

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"scoundrel/internal/game"
	"scoundrel/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Message is one frame sent to run watchers.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type client struct {
	run       string
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// offer queues a frame without blocking. A client too slow to keep up is
// dropped.
func (c *client) offer(b []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// Hub tracks the websocket watchers of each run. Engine events reach them
// through a session subscription; views are published after each command.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]func()
	stopped bool
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{clients: make(map[string]map[*client]func()), log: log}
}

func (h *Hub) ClientCount(run string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[run])
}

// Publish sends a message to every watcher of run.
func (h *Hub) Publish(run string, msg Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.log.Error().Err(err).Str("type", msg.Type).Msg("marshal websocket message")
		return
	}
	h.mu.RLock()
	var slow []*client
	for c := range h.clients[run] {
		if !c.offer(b) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range slow {
		h.unregister(c)
	}
}

// Stop disconnects every watcher. Later upgrades are refused.
func (h *Hub) Stop() {
	h.mu.Lock()
	h.stopped = true
	var all []*client
	for _, cs := range h.clients {
		for c := range cs {
			all = append(all, c)
		}
	}
	h.mu.Unlock()
	for _, c := range all {
		h.unregister(c)
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	unsub, ok := h.clients[c.run][c]
	if ok {
		delete(h.clients[c.run], c)
		if len(h.clients[c.run]) == 0 {
			delete(h.clients, c.run)
		}
	}
	h.mu.Unlock()
	if ok {
		unsub()
		c.close()
	}
}

// Serve upgrades the request and streams s to the connection, starting with
// its current view.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, s *session.Session) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		http.Error(w, "websocket hub is not running", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}

	c := &client{run: s.ID, conn: conn, send: make(chan []byte, 256)}
	if b, err := json.Marshal(Message{Type: "view", Data: s.View()}); err == nil {
		c.send <- b
	}
	unsub := s.Subscribe(game.SinkFunc(func(ev game.Event) {
		b, err := json.Marshal(Message{Type: "event", Data: ev})
		if err != nil {
			return
		}
		if !c.offer(b) {
			h.unregister(c)
		}
	}))

	h.mu.Lock()
	if h.clients[s.ID] == nil {
		h.clients[s.ID] = make(map[*client]func())
	}
	h.clients[s.ID][c] = unsub
	h.mu.Unlock()

	h.log.Debug().Str("run", s.ID).Int("watchers", h.ClientCount(s.ID)).Msg("websocket client connected")
	go h.writePump(c)
	go h.readPump(c)
}

// readPump only handles control frames; watchers send commands over HTTP.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug().Err(err).Str("run", c.run).Msg("websocket read")
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
