package ws

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10 // must stay below pongWait
	maxMessageSize = 4 * 1024          // upstream frames are tiny pings
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
	Subprotocols:    []string{ProtocolProtobuf, ProtocolJSON},
}

// Client is one subscriber. The hub owns send and closes it on removal.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	codec    codec
	send     chan []byte
	pong     chan struct{}
	connID   string
	protocol string
	logger   *zap.Logger
}

func newClient(h *Hub, conn *websocket.Conn, protocol string) *Client {
	c := &Client{
		hub:      h,
		conn:     conn,
		codec:    codecFor(protocol),
		send:     make(chan []byte, sendBufferSize),
		pong:     make(chan struct{}, 1),
		connID:   uuid.NewString(),
		protocol: protocol,
	}
	c.logger = h.logger.With(zap.String("connID", c.connID), zap.String("protocol", protocol))

	// queued before registration so it always precedes the first scan
	c.send <- c.codec.greeting(c.connID)
	return c
}

// ServeHTTP upgrades the request and streams scans until the peer leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	protocol, header := pickProtocol(r)

	conn, err := upgrader.Upgrade(w, r, header)
	if err != nil {
		h.logger.Error("websocket upgrade failed",
			zap.Strings("requested", websocket.Subprotocols(r)),
			zap.Error(err),
		)
		return
	}

	c := newClient(h, conn, protocol)

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writeLoop()
	go c.readLoop()
}

func (c *Client) readLoop() {
	defer c.leave()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		ok, err := c.codec.isPing(data)
		if err != nil {
			c.logger.Debug("ignoring upstream frame", zap.Error(err))
			continue
		}
		if ok {
			select {
			case c.pong <- struct{}{}:
			default: // one pending pong is enough
			}
		}
	}
}

func (c *Client) leave() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.done:
	}
	c.conn.Close()
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		var err error
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, nil)
				return
			}
			err = c.write(c.codec.frameType(), msg)
		case <-c.pong:
			err = c.write(c.codec.frameType(), c.codec.pong())
		case <-ticker.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			c.logger.Debug("websocket write failed", zap.Error(err))
			return
		}
	}
}

func (c *Client) write(kind int, payload []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, payload)
}
