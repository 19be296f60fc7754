package ws

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

// Gauge tracks the number of open connections.
type Gauge interface {
	Inc()
	Dec()
}

type nopGauge struct{}

func (nopGauge) Inc() {}
func (nopGauge) Dec() {}

// Hub manages WebSocket connections and pushes every scan to all of them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Frames
	encoder    *Encoder
	gauge      Gauge
	mu         sync.RWMutex
	latest     *Frames
	done       chan struct{}
	logger     *zap.Logger
}

// HubOption customizes a Hub.
type HubOption func(*Hub)

// WithGauge reports the connection count to g.
func WithGauge(g Gauge) HubOption {
	return func(h *Hub) { h.gauge = g }
}

// NewHub creates a new Hub.
func NewHub(logger *zap.Logger, opts ...HubOption) (*Hub, error) {
	enc, err := NewEncoder()
	if err != nil {
		return nil, err
	}
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Frames, 16),
		encoder:    enc,
		gauge:      nopGauge{},
		done:       make(chan struct{}),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Run processes hub events. Call this in a goroutine.
// Returns when context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hub shutting down")
			h.shutdown()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			latest := h.latest
			h.mu.Unlock()
			h.gauge.Inc()

			// late joiners get the current scan right away
			if latest != nil {
				h.deliver(client, latest.For(client.protocol))
			}
			h.logger.Debug("client registered",
				zap.String("connID", client.connID),
				zap.String("protocol", client.protocol),
			)

		case client := <-h.unregister:
			h.remove(client)

		case frames := <-h.broadcast:
			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mu.RUnlock()

			for _, client := range clients {
				h.deliver(client, frames.For(client.protocol))
			}
		}
	}
}

// deliver queues msg without blocking; a full buffer drops the client.
func (h *Hub) deliver(client *Client, msg []byte) {
	select {
	case client.send <- msg:
	default:
		h.logger.Debug("client too slow, dropping", zap.String("connID", client.connID))
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()

	if ok {
		h.gauge.Dec()
		h.logger.Debug("client unregistered", zap.String("connID", client.connID))
	}
}

// shutdown gracefully closes all client connections.
func (h *Hub) shutdown() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
		h.gauge.Dec()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish encodes a scan once per protocol and queues it for every client.
func (h *Hub) Publish(ctx context.Context, r *scan.Result) error {
	select {
	case <-h.done:
		return nil
	default:
	}

	frames, err := h.encoder.Encode(r)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.latest = frames
	h.mu.Unlock()

	select {
	case h.broadcast <- frames:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ scan.Sink = (*Hub)(nil)
