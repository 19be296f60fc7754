package ws

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// NegotiateResponse tells a client where to connect and how to ask for a
// wire format.
type NegotiateResponse struct {
	WebsocketURL string   `json:"websocket_url"`
	Subprotocols []string `json:"subprotocols"`
}

// NegotiateHandler handles the negotiate endpoint.
type NegotiateHandler struct {
	path   string
	logger *zap.Logger
}

// NewNegotiateHandler advertises the websocket mounted at path.
func NewNegotiateHandler(path string, logger *zap.Logger) *NegotiateHandler {
	return &NegotiateHandler{path: path, logger: logger}
}

func (h *NegotiateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	scheme := "ws"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "wss"
	}

	response := NegotiateResponse{
		WebsocketURL: scheme + "://" + r.Host + h.path,
		Subprotocols: []string{ProtocolProtobuf, ProtocolJSON},
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode negotiate response", zap.Error(err))
	}
}

// pickProtocol picks the first supported subprotocol the client asked for.
// Clients that ask for none get JSON.
func pickProtocol(r *http.Request) (string, http.Header) {
	for _, proto := range websocket.Subprotocols(r) {
		switch proto {
		case ProtocolProtobuf, ProtocolJSON:
			return proto, http.Header{"Sec-WebSocket-Protocol": {proto}}
		}
	}
	return ProtocolJSON, nil
}
