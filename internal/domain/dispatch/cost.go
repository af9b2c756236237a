// Package dispatch implements the rolling-horizon assignment core: the
// route/cost calculator (C4), greedy assigner (C5), locking gate (C6),
// reassignment pipeline (C7), instant-booking loader (C8), tick driver (C9)
// and metrics aggregator (C10).
package dispatch

import (
	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/geo"
	"dispatch-sim/internal/domain/pricing"
	"dispatch-sim/internal/domain/vehicle"
)

// BookingLookup resolves a booking id to its (immutable) Booking record.
type BookingLookup func(id int) (booking.Booking, bool)

// ActiveKM is the sum of each booking's own pickup->drop distance.
func ActiveKM(ids []int, lookup BookingLookup) float64 {
	var km float64
	for _, id := range ids {
		if b, ok := lookup(id); ok {
			km += geo.DistanceKM(b.Pickup, b.Drop)
		}
	}
	return km
}

// NonFinalDeadKM is home->first-pickup plus each drop->next-pickup deadhead,
// excluding the final return-home leg. Used while a plan is still
// subject to insertion.
func NonFinalDeadKM(home geo.Point, ids []int, lookup BookingLookup) float64 {
	if len(ids) == 0 {
		return 0
	}
	var km float64
	first, ok := lookup(ids[0])
	if !ok {
		return 0
	}
	km += geo.DistanceKM(home, first.Pickup)
	prev := first
	for _, id := range ids[1:] {
		b, ok := lookup(id)
		if !ok {
			continue
		}
		km += geo.DistanceKM(prev.Drop, b.Pickup)
		prev = b
	}
	return km
}

// FinalDeadKM adds the return-home leg to NonFinalDeadKM. Applied exactly
// once, at the end of a reassignment tick.
func FinalDeadKM(home geo.Point, ids []int, lookup BookingLookup) float64 {
	nonFinal := NonFinalDeadKM(home, ids, lookup)
	if len(ids) == 0 {
		return nonFinal
	}
	last, ok := lookup(ids[len(ids)-1])
	if !ok {
		return nonFinal
	}
	return nonFinal + geo.DistanceKM(last.Drop, home)
}

// DriverPay is active_km*active_pay + dead_km*dead_pay.
func DriverPay(activeKM, deadKM float64, r pricing.Rates) float64 {
	return activeKM*r.ActivePay + deadKM*r.DeadPay
}

// CustomerFare is the aggregated (not per-vehicle) fare for one booking.
func CustomerFare(b booking.Booking, r pricing.Rates) float64 {
	return (b.DistanceKM + b.DistanceKM*r.DeadRatio) * r.CustomerPrice
}

// Efficiency is active/(active+dead), or 0 when both are 0.
func Efficiency(activeKM, deadKM float64) float64 {
	total := activeKM + deadKM
	if total == 0 {
		return 0
	}
	return activeKM / total
}

// RecomputeNonFinal rebuilds v.ActiveKM, v.DeadKM (non-final form) and
// v.DriverPay from scratch given its current AssignedIDs. It does not touch AvailableFrom.
func RecomputeNonFinal(v *vehicle.Vehicle, lookup BookingLookup, rates *pricing.Table) {
	v.ActiveKM = ActiveKM(v.AssignedIDs, lookup)
	v.DeadKM = NonFinalDeadKM(v.Home, v.AssignedIDs, lookup)
	v.DriverPay = DriverPay(v.ActiveKM, v.DeadKM, rates.For(v.Class))
}

// Finalize applies the one-and-only home-return leg to every vehicle that
// holds any booking. Vehicles with no bookings keep active_km = dead_km = 0.
func Finalize(fleet []*vehicle.Vehicle, lookup BookingLookup, rates *pricing.Table) {
	for _, v := range fleet {
		if !v.HasBookings() {
			v.ActiveKM = 0
			v.DeadKM = 0
			v.DriverPay = 0
			continue
		}
		v.ActiveKM = ActiveKM(v.AssignedIDs, lookup)
		v.DeadKM = FinalDeadKM(v.Home, v.AssignedIDs, lookup)
		v.DriverPay = DriverPay(v.ActiveKM, v.DeadKM, rates.For(v.Class))
	}
}
