package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/exposure"
	"github.com/dgnsrekt/titan-guardian/internal/levels"
	"github.com/dgnsrekt/titan-guardian/internal/scan"
	"github.com/dgnsrekt/titan-guardian/internal/server/generated"
)

// LatestReader exposes the most recent scan.
type LatestReader interface {
	Get() *scan.Result
}

type Server struct {
	store   LatestReader
	started time.Time
	logger  *zap.Logger
}

func NewServer(store LatestReader, logger *zap.Logger) *Server {
	return &Server{
		store:   store,
		started: time.Now(),
		logger:  logger,
	}
}

var _ generated.StrictServerInterface = (*Server)(nil)

const noScanYet = "no scan has completed yet"

// GetHealth implements generated.StrictServerInterface. It stays 200 before
// the first scan.
func (s *Server) GetHealth(ctx context.Context, request generated.GetHealthRequestObject) (generated.GetHealthResponseObject, error) {
	resp := generated.GetHealth200JSONResponse{
		Status:    "ok",
		UptimeSec: int64(time.Since(s.started).Seconds()),
	}
	if res := s.store.Get(); res != nil {
		last := res.Time
		strategy := string(res.Strategy)
		resp.LastScan = &last
		resp.Strategy = &strategy
	}
	return resp, nil
}

// GetLatestScan implements generated.StrictServerInterface
func (s *Server) GetLatestScan(ctx context.Context, request generated.GetLatestScanRequestObject) (generated.GetLatestScanResponseObject, error) {
	res := s.store.Get()
	if res == nil {
		return generated.GetLatestScan404JSONResponse{Error: noScanYet}, nil
	}
	return generated.GetLatestScan200JSONResponse(toScanResult(res)), nil
}

// GetScanTable implements generated.StrictServerInterface. It returns the
// display window by default, or every strike that passed the filters with
// window=full.
func (s *Server) GetScanTable(ctx context.Context, request generated.GetScanTableRequestObject) (generated.GetScanTableResponseObject, error) {
	res := s.store.Get()
	if res == nil {
		return generated.GetScanTable404JSONResponse{Error: noScanYet}, nil
	}

	window := generated.Display
	if request.Params.Window != nil {
		window = *request.Params.Window
	}

	rows := res.Display
	if window == generated.Full && res.Table != nil {
		rows = res.Table.Rows
	}

	s.logger.Debug("serving scan table",
		zap.String("window", string(window)),
		zap.Int("rows", len(rows)),
	)

	return generated.GetScanTable200JSONResponse{
		Time:   res.Time,
		Spot:   res.Spot,
		Window: string(window),
		Rows:   toRows(rows),
	}, nil
}

func toScanResult(res *scan.Result) generated.ScanResult {
	return generated.ScanResult{
		Id:            res.ID.String(),
		Time:          res.Time,
		Spot:          res.Spot,
		Expiry:        res.Expiry,
		TimeToExpiry:  res.TimeToExpiry,
		Hour:          res.Hour,
		BasisOffset:   res.Offset,
		Contracts:     res.Contracts,
		Levels:        toLevels(res.Levels),
		Indeterminate: res.Indeterminate,
		Metrics: generated.Metrics{
			NetGex:          res.Metrics.NetGEX,
			NetCex:          res.Metrics.NetCEX,
			NetDex:          res.Metrics.NetDEX,
			NetVex:          res.Metrics.NetVEX,
			CallDist:        res.Metrics.CallDist,
			PutDist:         res.Metrics.PutDist,
			CallStrengthPct: res.Metrics.CallStrengthPct,
			PutStrengthPct:  res.Metrics.PutStrengthPct,
			Dominance:       toDominance(res.Metrics.Dominance),
		},
		Strategy: string(res.Strategy),
		Rule:     res.Rule,
		Display:  toRows(res.Display),
	}
}

func toLevels(lv levels.Levels) generated.Levels {
	return generated.Levels{
		CallWall:        lv.CallWall,
		PutWall:         lv.PutWall,
		Magnet:          lv.Magnet,
		CallStrengthPct: lv.CallStrengthPct,
		PutStrengthPct:  lv.PutStrengthPct,
		Dominance:       toDominance(lv.Dominance),
	}
}

func toDominance(d levels.Dominance) generated.Dominance {
	side := generated.DominanceSide(d.Side)
	if side == "" {
		side = generated.Neutral
	}
	return generated.Dominance{Side: side, Score: d.Score}
}

// toRows never returns nil so empty tables encode as [].
func toRows(rows []exposure.Row) []generated.Row {
	out := make([]generated.Row, len(rows))
	for i, r := range rows {
		out[i] = generated.Row{Strike: r.Strike, Gex: r.GEX, Dex: r.DEX, Vex: r.VEX, Cex: r.CEX}
	}
	return out
}
