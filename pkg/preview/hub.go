package preview

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MessageType identifies a preview message.
type MessageType string

const (
	// TypeInput carries freshly rendered HTML for a story.
	TypeInput MessageType = "input"

	// TypeError reports that a pushed document could not be rendered.
	TypeError MessageType = "error"
)

// Message is sent to preview subscribers.
type Message struct {
	Type  MessageType `json:"type"`
	Story string      `json:"story"`
	HTML  string      `json:"html,omitempty"`
	Error string      `json:"error,omitempty"`
}

// writeWait bounds a single websocket write.
const writeWait = 10 * time.Second

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithAllowedOrigins sets the origins allowed to subscribe. "*" allows any
// origin. Without this option only same-origin requests are accepted.
func WithAllowedOrigins(origins ...string) Option {
	return func(h *Hub) {
		if len(origins) == 0 {
			return
		}
		allowed := make(map[string]bool, len(origins))
		for _, o := range origins {
			allowed[o] = true
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed["*"] || allowed[origin]
		}
	}
}

// WithSubscriberHook is called with +1 and -1 as subscribers come and go.
func WithSubscriberHook(fn func(delta int)) Option {
	return func(h *Hub) {
		h.onSubscribe = fn
	}
}

// client is one subscriber. Gorilla connections allow a single concurrent
// writer, so writes are serialised per client.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages preview websocket subscriptions, grouped by story.
type Hub struct {
	mu          sync.RWMutex
	stories     map[string]map[*client]struct{}
	upgrader    websocket.Upgrader
	logger      *slog.Logger
	onSubscribe func(delta int)
}

// NewHub creates a new hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		stories: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleWebSocket subscribes the connection to the story named by the
// "story" query parameter until the client disconnects.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	story := r.URL.Query().Get("story")
	if story == "" {
		http.Error(w, "missing story parameter", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("preview upgrade failed", "story", story, "error", err)
		return
	}

	c := &client{conn: conn}
	h.add(story, c)
	h.logger.Debug("preview subscribed", "story", story)

	// Subscribers only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.remove(story, c)
	h.logger.Debug("preview unsubscribed", "story", story)
}

func (h *Hub) add(story string, c *client) {
	h.mu.Lock()
	clients, ok := h.stories[story]
	if !ok {
		clients = make(map[*client]struct{})
		h.stories[story] = clients
	}
	clients[c] = struct{}{}
	h.mu.Unlock()

	if h.onSubscribe != nil {
		h.onSubscribe(1)
	}
}

// remove drops c and closes its connection. It reports whether c was
// still subscribed.
func (h *Hub) remove(story string, c *client) bool {
	h.mu.Lock()
	clients := h.stories[story]
	_, ok := clients[c]
	if ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.stories, story)
		}
	}
	h.mu.Unlock()

	c.conn.Close()
	if ok && h.onSubscribe != nil {
		h.onSubscribe(-1)
	}
	return ok
}

// NotifyInput sends rendered HTML to the story's subscribers and returns
// how many received it.
func (h *Hub) NotifyInput(story, html string) int {
	return h.Broadcast(Message{Type: TypeInput, Story: story, HTML: html})
}

// NotifyError sends a render error to the story's subscribers.
func (h *Hub) NotifyError(story, errMsg string) int {
	return h.Broadcast(Message{Type: TypeError, Story: story, Error: errMsg})
}

// Broadcast sends msg to the subscribers of msg.Story. Subscribers that
// fail to receive are dropped.
func (h *Hub) Broadcast(msg Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		return 0
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.stories[msg.Story]))
	for c := range h.stories[msg.Story] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range clients {
		if err := c.write(data); err != nil {
			h.logger.Debug("preview write failed", "story", msg.Story, "error", err)
			h.remove(msg.Story, c)
			continue
		}
		sent++
	}
	return sent
}

// ClientCount returns the number of subscribers of story.
func (h *Hub) ClientCount(story string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.stories[story])
}

// Close closes all subscriber connections.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []struct {
		story string
		c     *client
	}
	for story, clients := range h.stories {
		for c := range clients {
			all = append(all, struct {
				story string
				c     *client
			}{story, c})
		}
	}
	h.mu.RUnlock()

	for _, e := range all {
		h.remove(e.story, e.c)
	}
}
