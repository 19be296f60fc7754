package marketdata

import "errors"

var (
	ErrNotFound    = errors.New("symbol or expiration not found")
	ErrRateLimited = errors.New("rate limited by API")
	ErrAuthFailed  = errors.New("authentication failed")
	ErrNoData      = errors.New("no usable market data")
)
