package events

import (
	"time"

	"github.com/dgnsrekt/titan-guardian/internal/levels"
	"github.com/dgnsrekt/titan-guardian/internal/regime"
	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

// ScanEvent is the summary of one scan pushed to subscribers.
type ScanEvent struct {
	BroadcasterID string           `json:"broadcaster_id"`
	Sequence      uint64           `json:"sequence"`
	ScanID        string           `json:"scan_id"`
	Time          time.Time        `json:"time"`
	Spot          float64          `json:"spot"`
	CallWall      int              `json:"call_wall"`
	PutWall       int              `json:"put_wall"`
	Magnet        int              `json:"magnet"`
	Dominance     levels.Dominance `json:"dominance"`
	NetGEX        float64          `json:"net_gex"`
	Strategy      regime.Strategy  `json:"strategy"`
	Rule          string           `json:"rule"`
}

// Snapshot is sent once per connection. Latest is nil before the first scan.
type Snapshot struct {
	BroadcasterID string     `json:"broadcaster_id"`
	Sequence      uint64     `json:"sequence"`
	Latest        *ScanEvent `json:"latest"`
}

func newScanEvent(id string, seq uint64, r *scan.Result) *ScanEvent {
	return &ScanEvent{
		BroadcasterID: id,
		Sequence:      seq,
		ScanID:        r.ID.String(),
		Time:          r.Time,
		Spot:          r.Spot,
		CallWall:      r.Levels.CallWall,
		PutWall:       r.Levels.PutWall,
		Magnet:        r.Levels.Magnet,
		Dominance:     r.Levels.Dominance,
		NetGEX:        r.Metrics.NetGEX,
		Strategy:      r.Strategy,
		Rule:          r.Rule,
	}
}
