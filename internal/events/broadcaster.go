// Package events streams scan summaries to Server-Sent Events subscribers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

// LatestReader exposes the most recent scan.
type LatestReader interface {
	Get() *scan.Result
}

// Broadcaster pushes every published scan to connected SSE clients.
type Broadcaster struct {
	broadcasterID string
	store         LatestReader
	logger        *zap.Logger

	mu       sync.RWMutex
	sequence uint64
	clients  map[*sseClient]bool
}

// sseClient represents a connected SSE subscriber.
type sseClient struct {
	dataCh  chan []byte
	flusher http.Flusher
	writer  http.ResponseWriter
}

// NewBroadcaster creates a broadcaster. id tells subscribers which process
// produced an event; store supplies the snapshot sent on connect.
func NewBroadcaster(id string, store LatestReader, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		broadcasterID: id,
		store:         store,
		logger:        logger,
		clients:       make(map[*sseClient]bool),
	}
}

// ClientCount returns the number of connected subscribers.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// ServeHTTP handles the SSE endpoint for subscribers.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Check if SSE is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &sseClient{
		dataCh:  make(chan []byte, 10),
		flusher: flusher,
		writer:  w,
	}

	b.addClient(client)
	defer b.removeClient(client)

	b.logger.Debug("events client connected", zap.String("remote_addr", r.RemoteAddr))

	// Send initial snapshot
	if err := b.sendEvent(client, "snapshot", b.buildSnapshot()); err != nil {
		b.logger.Debug("failed to send snapshot", zap.Error(err))
		return
	}

	// Stream events
	for {
		select {
		case <-r.Context().Done():
			b.logger.Debug("events client disconnected", zap.String("remote_addr", r.RemoteAddr))
			return
		case eventData := <-client.dataCh:
			if _, err := client.writer.Write(eventData); err != nil {
				b.logger.Debug("failed to write to client", zap.Error(err))
				return
			}
			client.flusher.Flush()
		}
	}
}

// Publish sends a scan event to every subscriber. Slow subscribers miss
// events rather than stall the scan loop.
func (b *Broadcaster) Publish(_ context.Context, r *scan.Result) error {
	b.mu.Lock()
	b.sequence++
	seq := b.sequence
	clients := make([]*sseClient, 0, len(b.clients))
	for client := range b.clients {
		clients = append(clients, client)
	}
	b.mu.Unlock()

	if len(clients) == 0 {
		return nil
	}

	eventData, err := formatEvent("scan", seq, newScanEvent(b.broadcasterID, seq, r))
	if err != nil {
		return err
	}

	for _, client := range clients {
		select {
		case client.dataCh <- eventData:
		default:
			b.logger.Debug("client channel full, dropping event", zap.Uint64("sequence", seq))
		}
	}
	return nil
}

func (b *Broadcaster) addClient(client *sseClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = true
}

func (b *Broadcaster) removeClient(client *sseClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients, client)
}

func (b *Broadcaster) buildSnapshot() *Snapshot {
	b.mu.RLock()
	seq := b.sequence
	b.mu.RUnlock()

	snap := &Snapshot{BroadcasterID: b.broadcasterID, Sequence: seq}
	if r := b.store.Get(); r != nil {
		snap.Latest = newScanEvent(b.broadcasterID, seq, r)
	}
	return snap
}

func (b *Broadcaster) sendEvent(client *sseClient, eventType string, data interface{}) error {
	b.mu.RLock()
	seq := b.sequence
	b.mu.RUnlock()

	eventData, err := formatEvent(eventType, seq, data)
	if err != nil {
		return err
	}

	if _, err := client.writer.Write(eventData); err != nil {
		return err
	}
	client.flusher.Flush()
	return nil
}

func formatEvent(eventType string, seq uint64, data interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\nid: %d\ndata: %s\n\n", eventType, seq, jsonData)), nil
}

var _ scan.Sink = (*Broadcaster)(nil)
