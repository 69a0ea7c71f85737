package handlers

import (
	"arksim/internal/domain"
	"arksim/internal/event"
)

// Fleet admits new drivers into the world. Grounded on
// app/controllers/fleet.py FleetHandler.on_driver_start_shift.
type Fleet struct {
	world *domain.WorldState
}

func NewFleet(world *domain.WorldState) *Fleet {
	return &Fleet{world: world}
}

// OnDriverStartShift adds the driver in the idle state and announces it.
func (h *Fleet) OnDriverStartShift(ev event.Event) []event.Event {
	d := &domain.Driver{ID: ev.DriverID, Loc: ev.Loc, State: domain.DriverIdle}
	h.world.AddDriver(d)
	return []event.Event{{T: ev.T, Tag: event.DriverAvailable, DriverID: d.ID}}
}
