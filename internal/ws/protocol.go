package ws

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Subprotocols a client may request. Anything else falls back to JSON.
const (
	ProtocolProtobuf = "protobuf.guardian.v1"
	ProtocolJSON     = "json.guardian.v1"
)

// Type URLs of the protobuf frames. Every frame is a google.protobuf.Any;
// scan payloads carry a zstd-compressed google.protobuf.Struct.
const (
	TypeConnected = "guardian.connected"
	TypeScan      = "guardian.scan"
	TypePing      = "guardian.ping"
	TypePong      = "guardian.pong"
)

// codec builds the control frames of one subprotocol.
type codec interface {
	frameType() int
	greeting(connID string) []byte
	pong() []byte
	isPing(data []byte) (bool, error)
}

func codecFor(protocol string) codec {
	if protocol == ProtocolProtobuf {
		return protoCodec{}
	}
	return jsonCodec{}
}

type protoCodec struct{}

func (protoCodec) frameType() int { return websocket.BinaryMessage }

func (protoCodec) greeting(connID string) []byte {
	body, _ := structpb.NewStruct(map[string]any{"connectionId": connID})
	return wrapAny(TypeConnected, body)
}

func (protoCodec) pong() []byte { return buildPongMessage() }

func (protoCodec) isPing(data []byte) (bool, error) {
	var msg anypb.Any
	if err := proto.Unmarshal(data, &msg); err != nil {
		return false, fmt.Errorf("unmarshal upstream frame: %w", err)
	}
	if msg.GetTypeUrl() != TypePing {
		return false, fmt.Errorf("unexpected upstream type %q", msg.GetTypeUrl())
	}
	return true, nil
}

type jsonCodec struct{}

func (jsonCodec) frameType() int { return websocket.TextMessage }

func (jsonCodec) greeting(connID string) []byte {
	data, _ := json.Marshal(map[string]string{
		"type":         "system",
		"event":        "connected",
		"connectionId": connID,
	})
	return data
}

func (jsonCodec) pong() []byte {
	return []byte(`{"type":"pong"}`)
}

func (jsonCodec) isPing(data []byte) (bool, error) {
	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return false, fmt.Errorf("unmarshal upstream JSON: %w", err)
	}
	if !strings.EqualFold(msg.Type, "ping") {
		return false, fmt.Errorf("unexpected upstream type %q", msg.Type)
	}
	return true, nil
}

func buildPongMessage() []byte {
	return wrapAny(TypePong, nil)
}

// buildDataMessage wraps a compressed scan payload.
func buildDataMessage(compressed []byte) []byte {
	data, _ := proto.Marshal(&anypb.Any{TypeUrl: TypeScan, Value: compressed})
	return data
}

// buildDataMessageJSON embeds the scan result as a JSON object.
func buildDataMessageJSON(rawJSON json.RawMessage) []byte {
	data, _ := json.Marshal(struct {
		Type     string          `json:"type"`
		DataType string          `json:"dataType"`
		Data     json.RawMessage `json:"data"`
	}{"message", "json", rawJSON})
	return data
}

func wrapAny(typeURL string, body proto.Message) []byte {
	var value []byte
	if body != nil {
		value, _ = proto.Marshal(body)
	}
	data, _ := proto.Marshal(&anypb.Any{TypeUrl: typeURL, Value: value})
	return data
}
