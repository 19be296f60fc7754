package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (c *captureTransport) Configure(sentry.ClientOptions) {}
func (c *captureTransport) SendEvent(e *sentry.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}
func (c *captureTransport) Flush(time.Duration) bool { return true }

// newTestTracker builds a tracker with an in-memory transport.
func newTestTracker(t *testing.T, tags map[string]string) (*Tracker, *captureTransport) {
	t.Helper()
	transport := &captureTransport{}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:       "https://public@sentry.example.com/1",
		Transport: transport,
	})
	require.NoError(t, err)
	return &Tracker{hub: sentry.NewHub(client, sentry.NewScope()), tags: tags, logger: zap.NewNop()}, transport
}

func TestTracker_Alert(t *testing.T) {
	tracker, transport := newTestTracker(t, map[string]string{"symbol": "SPY"})

	tracker.Alert(context.Background(), errors.New("decoding chain: unexpected EOF"))
	assert.True(t, tracker.Flush(time.Second))

	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.Len(t, transport.events, 1)
	ev := transport.events[0]
	assert.Equal(t, "scan", ev.Tags["component"])
	assert.Equal(t, "SPY", ev.Tags["symbol"])
	assert.Equal(t, sentry.LevelError, ev.Level)
}

func TestNew_InvalidDSN(t *testing.T) {
	_, err := New(Config{DSN: "not a dsn"}, zap.NewNop())
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var n Noop
	n.Alert(context.Background(), errors.New("ignored"))
	assert.True(t, n.Flush(time.Millisecond))
}
