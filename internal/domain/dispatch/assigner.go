package dispatch

import (
	"sort"

	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/geo"
	"dispatch-sim/internal/domain/pricing"
	"dispatch-sim/internal/domain/vehicle"
)

// DeadheadSpeedKMH is the assumed road speed used to test whether a vehicle
// can reach a booking's pickup in time.
const DeadheadSpeedKMH = 40.0

// maxRouteCompletion caps how many extra bookings the route-completion step
// may graft onto a single vehicle per primary assignment, keeping one van
// from swallowing an entire pool in one pass.
const maxRouteCompletion = 3

// AssignOptions controls one invocation of the greedy assigner. The
// reassignment pipeline runs three passes over the same leftover pool, each
// widening what counts as a match: exact class, then class upgrade (via a
// shadow-classed pool, see assignWithUpgrade), then a full waiver of the
// arrival-time test for bookings running out of passes.
type AssignOptions struct {
	// ExactClassOnly restricts matches to vehicles whose class equals the
	// booking's class exactly, instead of the normal "class or higher" rule.
	ExactClassOnly bool

	// WaiveAvailability skips the deadhead arrival test entirely: only
	// class compatibility (and MaxBookings) gate a match. Used for the
	// urgency-relaxation pass.
	WaiveAvailability bool

	// MaxBookings, if positive, rejects a vehicle that already carries this
	// many bookings. Zero means unlimited.
	MaxBookings int
}

func (o AssignOptions) accepts(v *vehicle.Vehicle, req booking.Booking) bool {
	if o.ExactClassOnly {
		if v.Class != req.Class {
			return false
		}
	} else if !v.Accepts(req) {
		return false
	}
	if o.MaxBookings > 0 && len(v.AssignedIDs) >= o.MaxBookings {
		return false
	}
	return true
}

// Assign runs one ascending/descending pass of the greedy assigner over
// pool against fleet, mutating the fleet in place. It returns the
// bookings that remain unassigned at the end of the pass.
func Assign(pool []booking.Booking, fleet *Fleet, lookup BookingLookup, rates *pricing.Table, opts AssignOptions) []booking.Booking {
	ascending := make([]booking.Booking, len(pool))
	copy(ascending, pool)
	sort.SliceStable(ascending, func(i, j int) bool {
		if ascending[i].PickupTime != ascending[j].PickupTime {
			return ascending[i].PickupTime < ascending[j].PickupTime
		}
		return ascending[i].ID < ascending[j].ID
	})

	remaining := make(map[int]bool, len(ascending))
	for _, b := range ascending {
		remaining[b.ID] = true
	}

	descending := make([]booking.Booking, len(ascending))
	copy(descending, ascending)
	sort.SliceStable(descending, func(i, j int) bool {
		return descending[i].PickupTime > descending[j].PickupTime
	})

	for _, primary := range ascending {
		if !remaining[primary.ID] {
			continue
		}
		best, bestDelta, ok := bestCandidate(primary, fleet, lookup, rates, opts)
		if !ok {
			continue
		}
		commit(best, primary.ID, lookup, rates)
		remaining[primary.ID] = false
		_ = bestDelta

		completeRoute(best, descending, remaining, lookup, rates, opts)
	}

	unassigned := make([]booking.Booking, 0)
	for _, b := range ascending {
		if remaining[b.ID] {
			unassigned = append(unassigned, b)
		}
	}
	return unassigned
}

// bestCandidate finds the available, class-suitable vehicle minimizing the
// hypothetical dead_km - active_km route metric, tie-broken by fewer
// existing bookings then lower vehicle id.
func bestCandidate(req booking.Booking, fleet *Fleet, lookup BookingLookup, rates *pricing.Table, opts AssignOptions) (*vehicle.Vehicle, float64, bool) {
	var best *vehicle.Vehicle
	var bestDelta float64
	found := false

	for _, v := range fleet.Vehicles {
		if !opts.accepts(v, req) {
			continue
		}
		if !opts.WaiveAvailability && !isAvailable(v, req, lookup) {
			continue
		}
		delta := hypotheticalDelta(v, req.ID, lookup, rates)
		if !found ||
			delta < bestDelta ||
			(delta == bestDelta && tieBreakBetter(v, best)) {
			best, bestDelta, found = v, delta, true
		}
	}
	return best, bestDelta, found
}

func tieBreakBetter(candidate, current *vehicle.Vehicle) bool {
	if len(candidate.AssignedIDs) != len(current.AssignedIDs) {
		return len(candidate.AssignedIDs) < len(current.AssignedIDs)
	}
	return candidate.ID < current.ID
}

// isAvailable tests whether v can physically reach req's pickup in time:
// available_from plus deadhead travel from the vehicle's last known location
// must not exceed the booking's pickup time.
func isAvailable(v *vehicle.Vehicle, req booking.Booking, lookup BookingLookup) bool {
	last := lastLocation(v, lookup)
	deadheadMin := geo.DistanceKM(last, req.Pickup) / DeadheadSpeedKMH * 60
	return float64(v.AvailableFrom)+deadheadMin <= float64(req.PickupTime)
}

func lastLocation(v *vehicle.Vehicle, lookup BookingLookup) geo.Point {
	if len(v.AssignedIDs) == 0 {
		return v.Home
	}
	lastID := v.AssignedIDs[len(v.AssignedIDs)-1]
	if b, ok := lookup(lastID); ok {
		return b.Drop
	}
	return v.Home
}

// hypotheticalDelta computes dead_km - active_km for v's route as if
// bookingID were appended and the route re-sorted by pickup time, without
// mutating v.
func hypotheticalDelta(v *vehicle.Vehicle, bookingID int, lookup BookingLookup, rates *pricing.Table) float64 {
	ids := append(append([]int(nil), v.AssignedIDs...), bookingID)
	sort.SliceStable(ids, func(i, j int) bool {
		bi, _ := lookup(ids[i])
		bj, _ := lookup(ids[j])
		return bi.PickupTime < bj.PickupTime
	})
	active := ActiveKM(ids, lookup)
	dead := NonFinalDeadKM(v.Home, ids, lookup)
	return dead - active
}

// commit appends bookingID onto v, re-sorts, and recomputes its running
// cost and availability.
func commit(v *vehicle.Vehicle, bookingID int, lookup BookingLookup, rates *pricing.Table) {
	v.AssignedIDs = append(v.AssignedIDs, bookingID)
	v.SortAssigned(func(id int) int {
		b, _ := lookup(id)
		return b.PickupTime
	})
	RecomputeNonFinal(v, lookup, rates)
	if b, ok := lookup(v.AssignedIDs[len(v.AssignedIDs)-1]); ok {
		if b.CompletionTime() > v.AvailableFrom {
			v.AvailableFrom = b.CompletionTime()
		}
	}
}

// completeRoute scans the descending view for still-unassigned bookings
// that densify the vehicle just committed to, in pickup-time-descending
// order, stopping once maxRouteCompletion extra bookings have been grafted
// on or no further candidate qualifies.
func completeRoute(v *vehicle.Vehicle, descending []booking.Booking, remaining map[int]bool, lookup BookingLookup, rates *pricing.Table, opts AssignOptions) {
	added := 0
	for _, candidate := range descending {
		if added >= maxRouteCompletion {
			return
		}
		if !remaining[candidate.ID] {
			continue
		}
		if !opts.accepts(v, candidate) {
			continue
		}
		if !opts.WaiveAvailability && !isAvailable(v, candidate, lookup) {
			continue
		}
		delta := hypotheticalDelta(v, candidate.ID, lookup, rates)
		if delta >= 0 && float64(candidate.PickupTime) < float64(v.AvailableFrom) {
			continue
		}
		commit(v, candidate.ID, lookup, rates)
		remaining[candidate.ID] = false
		added++
	}
}
