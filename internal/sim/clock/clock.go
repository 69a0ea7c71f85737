// Package clock maps simulation seconds onto wall-clock time, grounded on
// the prototype's sim/clock.py SimClock (epoch + tz-aware day/hour
// extraction), re-expressed with Go's time package; the epoch and every
// day/hour reading are in UTC.
package clock

import "time"

// SimClock anchors simulation time 0 to a wall-clock epoch.
type SimClock struct {
	epoch time.Time
}

// NewUTCEpoch builds a SimClock anchored at the given UTC date/time.
func NewUTCEpoch(year, month, day, hour, min, sec int) SimClock {
	return SimClock{epoch: time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)}
}

// ToWall converts a simulation time (seconds since epoch) to wall time.
func (c SimClock) ToWall(t float64) time.Time {
	return c.epoch.Add(time.Duration(t * float64(time.Second)))
}

// ToSim converts a wall time to simulation seconds since epoch.
func (c SimClock) ToSim(wall time.Time) float64 {
	return wall.Sub(c.epoch).Seconds()
}

// DayIndex returns the 0-based day number containing t.
func (c SimClock) DayIndex(t float64) int {
	return int(t / 86400)
}

// StartOfDay returns the simulation time at the start of t's day.
func (c SimClock) StartOfDay(t float64) float64 {
	return float64(c.DayIndex(t)) * 86400
}

// DowHourAt returns the (weekday, hour) pair in effect at simulation time t,
// in the clock's UTC frame.
func (c SimClock) DowHourAt(t float64) (time.Weekday, int) {
	wall := c.ToWall(t)
	return wall.Weekday(), wall.Hour()
}
