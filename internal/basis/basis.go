// Package basis calibrates the point offset between a tradable proxy quoted
// at 1/10th of its index (SPY for SPX) and the index itself.
package basis

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ProxyScale is the price ratio between the target index and its proxy.
const ProxyScale = 10.0

// Offset is the index-minus-scaled-proxy gap, computed once per process.
type Offset float64

// IndexPrice converts a proxy price to the index price scale.
func (o Offset) IndexPrice(proxy float64) float64 {
	return proxy*ProxyScale + float64(o)
}

// Strike converts a proxy strike label to the index price scale.
func (o Offset) Strike(proxyStrike float64) float64 {
	return proxyStrike*ProxyScale + float64(o)
}

// CloseSource provides the most recent prior-session close for a symbol.
type CloseSource interface {
	PreviousClose(ctx context.Context, symbol string) (float64, error)
}

// Compute returns indexClose - proxyClose*10.
func Compute(proxyClose, indexClose float64) Offset {
	return Offset(indexClose - proxyClose*ProxyScale)
}

// Calibrate fetches prior closes for the proxy and index and returns their
// offset. Any failure is logged and yields a zero offset; calibration never
// aborts the process.
func Calibrate(ctx context.Context, src CloseSource, proxySymbol, indexSymbol string, logger *zap.Logger) Offset {
	offset, err := calibrate(ctx, src, proxySymbol, indexSymbol)
	if err != nil {
		logger.Warn("basis calibration failed, using zero offset",
			zap.String("proxy", proxySymbol),
			zap.String("index", indexSymbol),
			zap.Error(err),
		)
		return 0
	}

	logger.Info("basis calibrated",
		zap.String("proxy", proxySymbol),
		zap.String("index", indexSymbol),
		zap.Float64("offset", float64(offset)),
	)
	return offset
}

func calibrate(ctx context.Context, src CloseSource, proxySymbol, indexSymbol string) (Offset, error) {
	proxyClose, err := src.PreviousClose(ctx, proxySymbol)
	if err != nil {
		return 0, fmt.Errorf("proxy close: %w", err)
	}
	indexClose, err := src.PreviousClose(ctx, indexSymbol)
	if err != nil {
		return 0, fmt.Errorf("index close: %w", err)
	}
	if proxyClose <= 0 || indexClose <= 0 {
		return 0, fmt.Errorf("non-positive close (proxy=%v index=%v)", proxyClose, indexClose)
	}
	return Compute(proxyClose, indexClose), nil
}
