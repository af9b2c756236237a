package dispatch

import (
	"sort"

	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/pricing"
	"dispatch-sim/internal/domain/vehicle"
)

// OverloadCapFinal is the soft per-vehicle booking ceiling the
// post-simulation sweep enforces. Unlike OverloadCap it is a best-effort
// fallback, not a hard gate reached during the live tick loop.
const OverloadCapFinal = 10

// PostSimulationSweep runs once, after the tick loop has exhausted every
// window, and places any still-unassigned booking on the least-loaded
// class-compatible vehicle with room under OverloadCapFinal. It performs
// no arrival-time test at all: by day_end there is no more horizon left to
// test against, only a best-effort attempt to avoid stranding a customer.
func PostSimulationSweep(pool []booking.Booking, fleet *Fleet, lookup BookingLookup, rates *pricing.Table) []booking.Booking {
	ascending := make([]booking.Booking, len(pool))
	copy(ascending, pool)
	sort.SliceStable(ascending, func(i, j int) bool {
		if ascending[i].PickupTime != ascending[j].PickupTime {
			return ascending[i].PickupTime < ascending[j].PickupTime
		}
		return ascending[i].ID < ascending[j].ID
	})

	var stillUnassigned []booking.Booking
	for _, req := range ascending {
		v := leastLoadedCompatible(fleet, req)
		if v == nil {
			stillUnassigned = append(stillUnassigned, req)
			continue
		}
		commit(v, req.ID, lookup, rates)
	}
	return stillUnassigned
}

// leastLoadedCompatible returns the class-compatible vehicle with the
// fewest assigned bookings under OverloadCapFinal, tie-broken by lower
// vehicle id, or nil if none qualifies.
func leastLoadedCompatible(fleet *Fleet, req booking.Booking) *vehicle.Vehicle {
	var best *vehicle.Vehicle
	for _, v := range fleet.Vehicles {
		if !v.Accepts(req) {
			continue
		}
		if len(v.AssignedIDs) >= OverloadCapFinal {
			continue
		}
		if best == nil ||
			len(v.AssignedIDs) < len(best.AssignedIDs) ||
			(len(v.AssignedIDs) == len(best.AssignedIDs) && v.ID < best.ID) {
			best = v
		}
	}
	return best
}
