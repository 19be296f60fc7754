package data

import (
	"time"

	"github.com/dgnsrekt/titan-guardian/internal/basis"
	"github.com/dgnsrekt/titan-guardian/internal/exposure"
)

// Record is one recorded market snapshot, one JSON object per line.
// Spot is already on the index scale; strikes are proxy strikes and need
// Offset to be placed on it.
type Record struct {
	Timestamp int64               `json:"timestamp"` // unix seconds
	Spot      float64             `json:"spot"`
	Offset    float64             `json:"basis_offset"`
	Expiry    string              `json:"expiry"`
	Calls     []exposure.Contract `json:"calls"`
	Puts      []exposure.Contract `json:"puts"`
}

// Time returns the record timestamp in UTC.
func (r *Record) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

// Snapshot converts the record into the pipeline's input.
func (r *Record) Snapshot() *exposure.Snapshot {
	return &exposure.Snapshot{
		Timestamp: r.Time(),
		Spot:      r.Spot,
		Chain: exposure.Chain{
			Expiry: r.Expiry,
			Calls:  r.Calls,
			Puts:   r.Puts,
		},
	}
}

// NewRecord captures a snapshot for later replay.
func NewRecord(s *exposure.Snapshot, offset basis.Offset) Record {
	return Record{
		Timestamp: s.Timestamp.Unix(),
		Spot:      s.Spot,
		Offset:    float64(offset),
		Expiry:    s.Chain.Expiry,
		Calls:     s.Chain.Calls,
		Puts:      s.Chain.Puts,
	}
}
