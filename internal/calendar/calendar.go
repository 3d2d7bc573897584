// Package calendar decides which dates are NSE trading days and resolves
// arbitrary dates to the nearest trading day at or before them.
package calendar

import (
	"time"
)

// dateKey normalizes a time to a comparable calendar-day key.
func dateKey(d time.Time) string {
	return d.Format("2006-01-02")
}

// Calendar is a trading calendar built from an injected holiday table.
// It is a pure value: all methods are side-effect free and safe for
// concurrent use.
type Calendar struct {
	holidays map[string]struct{}
}

// New builds a Calendar from the given market holiday dates. The time of day
// and location of each entry are ignored; only the calendar date matters.
func New(holidays []time.Time) *Calendar {
	set := make(map[string]struct{}, len(holidays))
	for _, d := range holidays {
		set[dateKey(d)] = struct{}{}
	}
	return &Calendar{holidays: set}
}

// IsTradingDay reports whether the exchange is open on the given date.
// Saturdays, Sundays and listed holidays are closed.
func (c *Calendar) IsTradingDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	_, holiday := c.holidays[dateKey(d)]
	return !holiday
}

// Resolve walks backward one calendar day at a time until it lands on a
// trading day. Termination is guaranteed: the weekday cycle is finite and the
// holiday table is a closed set, so at most a bounded run of closed days can
// precede any date.
func (c *Calendar) Resolve(d time.Time) time.Time {
	for !c.IsTradingDay(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// PrevTradingDay returns the nearest trading day strictly before d.
func (c *Calendar) PrevTradingDay(d time.Time) time.Time {
	return c.Resolve(d.AddDate(0, 0, -1))
}
