package marketdata

import (
	"bytes"
	"encoding/json"
)

// singleOrArray decodes fields the API returns as a bare object when there
// is exactly one element and as an array otherwise.
type singleOrArray[T any] []T

func (s *singleOrArray[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '[' {
		return json.Unmarshal(b, (*[]T)(s))
	}
	var one T
	if err := json.Unmarshal(b, &one); err != nil {
		return err
	}
	*s = append(*s, one)
	return nil
}

// QuotesResponse is the body of /markets/quotes.
type QuotesResponse struct {
	Quotes struct {
		Quote singleOrArray[Quote] `json:"quote"`
	} `json:"quotes"`
}

// Quote is a single equity or index quote.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Type      string  `json:"type"`
	Last      float64 `json:"last"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Close     float64 `json:"close"`
	PrevClose float64 `json:"prevclose"`
	TradeDate int64   `json:"trade_date"`
}

// Price returns the last trade, or the bid/ask midpoint when there was none.
func (q Quote) Price() float64 {
	if q.Last > 0 {
		return q.Last
	}
	if q.Bid > 0 && q.Ask > 0 {
		return (q.Bid + q.Ask) / 2
	}
	return 0
}

// ExpirationsResponse is the body of /markets/options/expirations.
type ExpirationsResponse struct {
	Expirations struct {
		Date singleOrArray[string] `json:"date"`
	} `json:"expirations"`
}

// OptionChainResponse is the body of /markets/options/chains.
type OptionChainResponse struct {
	Options struct {
		Option singleOrArray[Option] `json:"option"`
	} `json:"options"`
}

// Option is one contract of a chain.
type Option struct {
	Greeks         *Greeks `json:"greeks,omitempty"`
	Symbol         string  `json:"symbol"`
	OptionType     string  `json:"option_type"`
	ExpirationDate string  `json:"expiration_date"`
	Underlying     string  `json:"underlying"`
	Strike         float64 `json:"strike"`
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	Last           float64 `json:"last"`
	Volume         int64   `json:"volume"`
	OpenInterest   int64   `json:"open_interest"`
}

// Greeks are the vendor-computed Greeks and implied volatilities.
type Greeks struct {
	Delta  float64 `json:"delta"`
	Gamma  float64 `json:"gamma"`
	Theta  float64 `json:"theta"`
	Vega   float64 `json:"vega"`
	BidIV  float64 `json:"bid_iv"`
	MidIV  float64 `json:"mid_iv"`
	AskIV  float64 `json:"ask_iv"`
	SmvVol float64 `json:"smv_vol"`
}

// ImpliedVolatility prefers the mid IV and falls back to the smoothed
// surface volatility.
func (o Option) ImpliedVolatility() float64 {
	if o.Greeks == nil {
		return 0
	}
	if o.Greeks.MidIV > 0 {
		return o.Greeks.MidIV
	}
	return o.Greeks.SmvVol
}
