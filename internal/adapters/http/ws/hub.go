// Package ws pushes card events to browsers over WebSocket.
package ws

import (
	"context"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/okian/matchboard/internal/domain/model"
	"github.com/okian/matchboard/pkg/logger"
	"github.com/okian/matchboard/pkg/metrics"
)

const defaultBroadcastBuffer = 1000

// ErrHubStopped is returned by Publish once Run has returned.
var ErrHubStopped = errors.New("ws hub stopped")

// SnapshotFunc returns the event sent to a client right after it connects.
type SnapshotFunc func(ctx context.Context) model.CardEvent

// Hub tracks connected clients and fans broadcasts out to them. Slow clients
// lose messages rather than stall the hub.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	snapshot SnapshotFunc
	log      logger.Logger

	mu    sync.RWMutex
	count int
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithSnapshot sets the snapshot sent to new clients.
func WithSnapshot(fn SnapshotFunc) HubOption {
	return func(h *Hub) { h.snapshot = fn }
}

// WithHubLogger sets the hub logger.
func WithHubLogger(l logger.Logger) HubOption {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// WithBroadcastBuffer sets how many broadcasts may queue before Publish drops.
func WithBroadcastBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.broadcast = make(chan []byte, n)
		}
	}
}

// SetSnapshot replaces the snapshot function. Call it before Run.
func (h *Hub) SetSnapshot(fn SnapshotFunc) {
	h.snapshot = fn
}

func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients:    map[*Client]struct{}{},
		broadcast:  make(chan []byte, defaultBroadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        logger.Get().Named("ws"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run serves registrations and broadcasts until ctx is done. Remaining
// clients are disconnected on exit.
func (h *Hub) Run(ctx context.Context) {
	defer h.stop()
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.setCount(len(h.clients))
			if h.snapshot != nil {
				if msg, err := sonic.Marshal(h.snapshot(ctx)); err == nil {
					c.trySend(msg)
				} else {
					h.log.Error(ctx, "encode snapshot", logger.Error(err))
				}
			}
			h.log.Debug(ctx, "client connected", logger.String("client_id", c.ID))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
				h.log.Debug(ctx, "client disconnected", logger.String("client_id", c.ID))
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				if c.trySend(msg) {
					metrics.RecordWSMessage()
				} else {
					metrics.RecordWSDropped()
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.setCount(len(h.clients))
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
	metrics.UpdateWSClients(n)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Publish queues ev for every client. It never blocks: when the broadcast
// buffer is full the event is dropped and counted.
func (h *Hub) Publish(_ context.Context, ev model.CardEvent) error {
	msg, err := sonic.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "encode card event")
	}
	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}
	select {
	case h.broadcast <- msg:
	default:
		metrics.RecordWSDropped()
	}
	return nil
}

// Register adds c to the hub. It returns false if the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
