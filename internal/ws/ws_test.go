package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dgnsrekt/titan-guardian/internal/exposure"
	"github.com/dgnsrekt/titan-guardian/internal/levels"
	"github.com/dgnsrekt/titan-guardian/internal/regime"
	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

type countingGauge struct{ n atomic.Int64 }

func (g *countingGauge) Inc() { g.n.Add(1) }
func (g *countingGauge) Dec() { g.n.Add(-1) }

func sampleResult() *scan.Result {
	return &scan.Result{
		ID:       uuid.New(),
		Time:     time.Date(2025, 11, 14, 10, 30, 0, 0, time.UTC),
		Spot:     6701.25,
		Expiry:   "2025-11-14",
		Levels:   levels.Levels{CallWall: 6720, PutWall: 6680, Magnet: 6700},
		Strategy: regime.LongGammaRange,
		Rule:     "long gamma",
		Display:  []exposure.Row{{Strike: 6700, GEX: 1.5e9}},
	}
}

func startHub(t *testing.T, opts ...HubOption) (*Hub, *httptest.Server) {
	t.Helper()
	hub, err := NewHub(zap.NewNop(), opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, protocols ...string) *websocket.Conn {
	t.Helper()
	dialer := websocket.Dialer{Subprotocols: protocols, HandshakeTimeout: 5 * time.Second}
	conn, resp, err := dialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	if len(protocols) > 0 {
		assert.Equal(t, protocols[0], resp.Header.Get("Sec-WebSocket-Protocol"))
	}
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestHub_JSONClientReceivesScan(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, ProtocolJSON)

	msgType, greeting, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, msgType)

	var hello map[string]any
	require.NoError(t, json.Unmarshal(greeting, &hello))
	assert.Equal(t, "connected", hello["event"])
	assert.NotEmpty(t, hello["connectionId"])

	require.NoError(t, hub.Publish(context.Background(), sampleResult()))

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string      `json:"type"`
		Data scan.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &msg))
	assert.Equal(t, "message", msg.Type)
	assert.Equal(t, regime.LongGammaRange, msg.Data.Strategy)
	assert.Equal(t, 6720, msg.Data.Levels.CallWall)
}

func TestHub_ProtobufClientReceivesCompressedScan(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, ProtocolProtobuf)

	msgType, greeting, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, msgType)

	var hello anypb.Any
	require.NoError(t, proto.Unmarshal(greeting, &hello))
	assert.Equal(t, TypeConnected, hello.GetTypeUrl())

	var body structpb.Struct
	require.NoError(t, proto.Unmarshal(hello.GetValue(), &body))
	assert.NotEmpty(t, body.GetFields()["connectionId"].GetStringValue())

	require.NoError(t, hub.Publish(context.Background(), sampleResult()))

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	st, err := DecodeScan(frame)
	require.NoError(t, err)
	fields := st.GetFields()
	assert.Equal(t, string(regime.LongGammaRange), fields["strategy"].GetStringValue())
	assert.Equal(t, 6701.25, fields["spot"].GetNumberValue())
	assert.Equal(t, 6680.0, fields["levels"].GetStructValue().GetFields()["put_wall"].GetNumberValue())
}

func TestHub_LateJoinerGetsLatest(t *testing.T) {
	hub, srv := startHub(t)
	require.NoError(t, hub.Publish(context.Background(), sampleResult()))

	conn := dial(t, srv)
	_, _, err := conn.ReadMessage() // greeting
	require.NoError(t, err)

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(frame), `"strategy":"`+string(regime.LongGammaRange)+`"`)
}

func TestHub_PingPong(t *testing.T) {
	_, srv := startHub(t)
	conn := dial(t, srv, ProtocolJSON)
	_, _, err := conn.ReadMessage()
	require.NoError(t, err)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(frame))
}

func TestHub_TracksConnections(t *testing.T) {
	gauge := &countingGauge{}
	hub, srv := startHub(t, WithGauge(gauge))

	conn := dial(t, srv)
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return gauge.n.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return gauge.n.Load() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestNegotiate(t *testing.T) {
	h := NewNegotiateHandler("/ws", zap.NewNop())
	req := httptest.NewRequest("GET", "http://guardian.local/api/v1/stream/negotiate", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	var resp NegotiateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ws://guardian.local/ws", resp.WebsocketURL)
	assert.Equal(t, []string{ProtocolProtobuf, ProtocolJSON}, resp.Subprotocols)
}

func TestDecodeScan_RejectsOtherFrames(t *testing.T) {
	_, err := DecodeScan(buildPongMessage())
	assert.Error(t, err)
}
