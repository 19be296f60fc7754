package ws

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

// Frames are one scan result in both wire formats.
type Frames struct {
	JSON     []byte
	Protobuf []byte
}

// For returns the frame matching a negotiated protocol.
func (f *Frames) For(protocol string) []byte {
	if protocol == ProtocolProtobuf {
		return f.Protobuf
	}
	return f.JSON
}

// Encoder converts scan results to wire format (Struct + Zstd for protobuf
// clients, plain JSON for the rest).
type Encoder struct {
	zstdEncoder *zstd.Encoder
}

// NewEncoder creates a new Encoder with Zstd compression.
func NewEncoder() (*Encoder, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	return &Encoder{zstdEncoder: enc}, nil
}

// Encode builds both frames for a result. The JSON encoding is the source
// for the protobuf Struct so both carry the same fields.
func (e *Encoder) Encode(r *scan.Result) (*Frames, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal scan json: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal scan json: %w", err)
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	pbData, err := proto.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal protobuf: %w", err)
	}

	return &Frames{
		JSON:     buildDataMessageJSON(raw),
		Protobuf: buildDataMessage(e.zstdEncoder.EncodeAll(pbData, nil)),
	}, nil
}

// Close releases encoder resources.
func (e *Encoder) Close() {
	if e.zstdEncoder != nil {
		e.zstdEncoder.Close()
	}
}

// DecodeScan reverses the protobuf frame of a scan. Clients written in Go
// can use it directly.
func DecodeScan(frame []byte) (*structpb.Struct, error) {
	var msg anypb.Any
	if err := proto.Unmarshal(frame, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal frame: %w", err)
	}
	if msg.GetTypeUrl() != TypeScan {
		return nil, fmt.Errorf("unexpected frame type: %s", msg.GetTypeUrl())
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer dec.Close()

	pbData, err := dec.DecodeAll(msg.GetValue(), nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}

	var st structpb.Struct
	if err := proto.Unmarshal(pbData, &st); err != nil {
		return nil, fmt.Errorf("unmarshal struct: %w", err)
	}
	return &st, nil
}
