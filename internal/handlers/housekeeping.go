package handlers

import (
	"arksim/internal/domain"
	"arksim/internal/event"
)

// Housekeeping runs once-per-day bookkeeping that has no rider/trip
// counterpart: expiring drivers whose shift has ended, and re-arming the
// next day's EndOfDay tick. Recovered from app/controllers/fleet.py's
// stubbed spawn/day-boundary hooks and app/build.py's initial EndOfDay
// seed; the base scenario configures no shift-end times, so expiry is a
// no-op hook point until a scenario actually sets one.
type Housekeeping struct {
	world *domain.WorldState

	// ShiftEndDay, when set for a driver id, is the day index after which
	// that driver is retired from the idle pool rather than matched again.
	ShiftEndDay map[int64]int
}

func NewHousekeeping(world *domain.WorldState) *Housekeeping {
	return &Housekeeping{world: world, ShiftEndDay: make(map[int64]int)}
}

// OnEndOfDay expires any driver whose shift ended on or before day_index,
// then re-schedules tomorrow's EndOfDay.
func (h *Housekeeping) OnEndOfDay(ev event.Event) []event.Event {
	for id, endDay := range h.ShiftEndDay {
		if ev.DayIndex < endDay {
			continue
		}
		if _, ok := h.world.Drivers[id]; !ok {
			continue
		}
		h.world.RemoveIdle(id)
		delete(h.world.Drivers, id)
		delete(h.ShiftEndDay, id)
	}

	secondsPerDay := 24.0 * 3600.0
	nextDay := ev.DayIndex + 1
	return []event.Event{{
		T:        float64(nextDay) * secondsPerDay,
		Tag:      event.EndOfDay,
		DayIndex: nextDay,
	}}
}
