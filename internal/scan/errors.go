package scan

import "errors"

var (
	// ErrMarketClosed signals that the session has ended; it is not a failure.
	ErrMarketClosed = errors.New("market closed")
	// ErrNoData means the source or the filters left nothing to analyze.
	ErrNoData = errors.New("no data for scan")
	// ErrPanic wraps a panic recovered while scanning.
	ErrPanic = errors.New("scan panicked")
)

// IsExpected reports whether err is a normal skip rather than a failure.
func IsExpected(err error) bool {
	return errors.Is(err, ErrMarketClosed) || errors.Is(err, ErrNoData)
}
