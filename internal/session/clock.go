// Package session answers trading-session questions in the exchange timezone:
// how much of a trading year is left before today's close, what fractional
// hour it is, and whether a date is an exchange business day.
package session

import (
	"time"

	"github.com/scmhub/calendar"
)

const (
	// MinutesPerDay is the length of a regular equity session.
	MinutesPerDay = 390
	// TradingDaysPerYear annualizes session minutes.
	TradingDaysPerYear = 252
)

// Clock handles session timing for a fixed close time and timezone.
type Clock struct {
	closeHour   int
	closeMinute int
	location    *time.Location
	nyse        *calendar.Calendar
}

// NewClock creates a Clock closing at closeHour:closeMinute in the given
// timezone. An unknown timezone falls back to UTC.
func NewClock(timezone string, closeHour, closeMinute int) *Clock {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Clock{
		closeHour:   closeHour,
		closeMinute: closeMinute,
		location:    loc,
		nyse:        calendar.XNYS(),
	}
}

// Location returns the clock's timezone location
func (c *Clock) Location() *time.Location {
	return c.location
}

// Local converts t into the clock's timezone.
func (c *Clock) Local(t time.Time) time.Time {
	return t.In(c.location)
}

// CloseOn returns the session close for the calendar day of t.
func (c *Clock) CloseOn(t time.Time) time.Time {
	local := c.Local(t)
	return time.Date(local.Year(), local.Month(), local.Day(), c.closeHour, c.closeMinute, 0, 0, c.location)
}

// TimeToExpiry returns the fraction of a trading year left until today's
// close. The result is at least one minute's worth while the close is ahead
// and exactly 0 once it has passed; 0 means the market is closed.
func (c *Clock) TimeToExpiry(now time.Time) float64 {
	remaining := c.CloseOn(now).Sub(c.Local(now))
	if remaining <= 0 {
		return 0
	}

	minutes := remaining.Minutes()
	if minutes < 1 {
		minutes = 1
	}
	return minutes / (MinutesPerDay * TradingDaysPerYear)
}

// FractionalHour returns the local wall-clock hour, e.g. 13.5 for 1:30 PM.
func (c *Clock) FractionalHour(now time.Time) float64 {
	local := c.Local(now)
	return float64(local.Hour()) + float64(local.Minute())/60 + float64(local.Second())/3600
}

// IsMarketDay checks if the date of t is a trading day (not weekend/holiday)
func (c *Clock) IsMarketDay(t time.Time) bool {
	local := c.Local(t)
	// noon avoids any DST edge when matching the calendar date
	noon := time.Date(local.Year(), local.Month(), local.Day(), 12, 0, 0, 0, c.location)
	return c.nyse.IsBusinessDay(noon)
}

// TodayDate returns the date of t in YYYY-MM-DD format in the clock's timezone
func (c *Clock) TodayDate(t time.Time) string {
	return c.Local(t).Format("2006-01-02")
}
