// Package localtime computes the controller's effective local time: a fixed
// base hour offset from the register store plus a daily daylight-saving
// determination. The system clock stays in UTC; every "top of the hour" and
// "midnight" decision in the controller goes through this package.
package localtime

import (
	"fmt"
	"time"
)

// IsDSTActive reports whether US daylight-saving rules are in effect at the
// given local time: from 02:00 on the second Sunday of March until 02:00 on
// the first Sunday of November.
func IsDSTActive(local time.Time) bool {
	start := nthSunday(local.Year(), time.March, 2, local.Location())
	end := nthSunday(local.Year(), time.November, 1, local.Location())
	return !local.Before(start) && local.Before(end)
}

// nthSunday returns 02:00 on the nth Sunday of the given month.
func nthSunday(year int, month time.Month, n int, loc *time.Location) time.Time {
	d := time.Date(year, month, 1, 2, 0, 0, 0, loc)
	offset := (7 - int(d.Weekday())) % 7 // days until first Sunday
	return d.AddDate(0, 0, offset+7*(n-1))
}

// Clock converts UTC instants to the controller's local wall clock.
// Recompute is called once per day; the DST result is derived from the date
// each time and never persisted, so the stored offset cannot drift.
type Clock struct {
	baseOffset int // whole hours from UTC, standard time
	dstActive  bool
}

// NewClock creates a Clock with the given base offset. The DST state starts
// from the current date so the first day before the 02:00 recompute is
// already correct.
func NewClock(baseOffsetHours int, now time.Time) *Clock {
	c := &Clock{baseOffset: baseOffsetHours}
	c.dstActive = IsDSTActive(c.Local(now))
	return c
}

// SetBaseOffset updates the standard-time hour offset.
func (c *Clock) SetBaseOffset(hours int) {
	c.baseOffset = hours
}

// BaseOffset returns the standard-time hour offset.
func (c *Clock) BaseOffset() int {
	return c.baseOffset
}

// Recompute re-derives the DST state from the current date. Called once per
// local day at 02:00.
func (c *Clock) Recompute(now time.Time) {
	c.dstActive = IsDSTActive(c.Local(now))
}

// Local converts a UTC instant to local wall-clock time using the effective
// offset. The result carries the UTC location; only its Y/M/D/H/M/S fields
// are meaningful.
func (c *Clock) Local(now time.Time) time.Time {
	offset := c.baseOffset
	if c.dstActive {
		offset++
	}
	return now.UTC().Add(time.Duration(offset) * time.Hour)
}

// OffsetString renders the effective offset, e.g. "UTC-5" or "UTC-4 (DST)".
func (c *Clock) OffsetString() string {
	offset := c.baseOffset
	suffix := ""
	if c.dstActive {
		offset++
		suffix = " (DST)"
	}
	return fmt.Sprintf("UTC%+d%s", offset, suffix)
}

// SecondsToHour returns the duration from the given local time to the top of
// the next hour.
func SecondsToHour(local time.Time) time.Duration {
	next := local.Truncate(time.Hour).Add(time.Hour)
	return next.Sub(local)
}
