package server

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/katalvlaran/gridpath/gridgraph"
)

// DefaultSendBuffer is the per-client outbound queue length.
const DefaultSendBuffer = 1024

// Hub fans search events out to websocket clients. It implements
// session.Renderer; every method returns without blocking, and a client whose
// queue is full is disconnected.
type Hub struct {
	log     *slog.Logger
	metrics *Metrics
	sendBuf int

	mu      sync.Mutex
	clients map[uuid.UUID]*client
	closed  bool
}

// NewHub returns an empty hub. Nil arguments select a discarding logger and
// unregistered metrics.
func NewHub(logger *slog.Logger, m *Metrics) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if m == nil {
		m = NewMetrics(nil)
	}
	return &Hub{
		log:     logger.With(slog.String("component", "hub")),
		metrics: m,
		sendBuf: DefaultSendBuffer,
		clients: make(map[uuid.UUID]*client),
	}
}

func (h *Hub) OnVisited(p gridgraph.Position) { h.Broadcast(Event{Type: EventVisited, Cell: cellOf(p)}) }
func (h *Hub) OnCurrent(p gridgraph.Position) { h.Broadcast(Event{Type: EventCurrent, Cell: cellOf(p)}) }
func (h *Hub) OnPath(p gridgraph.Position)    { h.Broadcast(Event{Type: EventPath, Cell: cellOf(p)}) }
func (h *Hub) Clear()                         { h.Broadcast(Event{Type: EventClear}) }

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues e for every client.
func (h *Hub) Broadcast(e Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		h.log.Error("encode event", slog.String("type", e.Type), slog.Any("error", err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		h.queueLocked(c, msg)
	}
}

// send queues e for c only.
func (h *Hub) send(c *client, e Event) {
	msg, err := json.Marshal(e)
	if err != nil {
		h.log.Error("encode event", slog.String("type", e.Type), slog.Any("error", err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		h.queueLocked(c, msg)
	}
}

func (h *Hub) queueLocked(c *client, msg []byte) {
	select {
	case c.send <- msg:
	default:
		h.log.Warn("client too slow, disconnecting", slog.String("client", c.id.String()))
		h.metrics.DroppedClients.Inc()
		h.removeLocked(c)
	}
}

// add registers c; it fails once the hub is closed.
func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	h.metrics.Clients.Inc()
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked closes c.send exactly once; the writer then closes the socket.
func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c.id]; !ok {
		return
	}
	delete(h.clients, c.id)
	close(c.send)
	h.metrics.Clients.Dec()
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, c := range h.clients {
		h.removeLocked(c)
	}
}
