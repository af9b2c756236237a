package dispatch

import (
	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/pricing"
)

// UrgentWindowMinutes is how far into the future a booking's pickup must
// fall for the urgency-relaxation pass to even consider it.
const UrgentWindowMinutes = 60

// OverloadCap is the per-vehicle booking ceiling the urgency-relaxation
// pass enforces in place of the arrival-time test it waives.
const OverloadCap = 8

// ClassUpgradeMax is the highest class a booking may be shadow-upgraded
// past in the single-class-upgrade pass; class 9 bookings skip it.
const ClassUpgradeMax = 9

// Reassign runs the three-pass pipeline over pool against fleet and returns
// whatever is left unassigned once all three passes are exhausted (C7):
//
//  1. Pass A: exact class match, normal arrival test.
//  2. Pass B: each still-unassigned booking is offered up with its class
//     shadow-raised by one, so only a vehicle one class above (or more) can
//     take it; the real booking keeps its original class once attached.
//  3. Pass C: bookings whose pickup is within UrgentWindowMinutes drop the
//     arrival test altogether, gated only by class and OverloadCap.
//
// Pass A and Pass B run against a cloned fleet so a mid-pass failure can
// never leave a partially-mutated vehicle on the real registry; the clone
// is copied back vehicle-by-vehicle once each pass returns.
func Reassign(pool []booking.Booking, fleet *Fleet, lookup BookingLookup, rates *pricing.Table, now int) []booking.Booking {
	if len(pool) == 0 {
		return nil
	}

	left := runSpeculative(fleet, func(shadow *Fleet) []booking.Booking {
		return Assign(pool, shadow, lookup, rates, AssignOptions{ExactClassOnly: true})
	})
	if len(left) == 0 {
		return left
	}

	left = runSpeculative(fleet, func(shadow *Fleet) []booking.Booking {
		return assignWithUpgrade(left, shadow, lookup, rates)
	})
	if len(left) == 0 {
		return left
	}

	return assignUrgent(left, fleet, lookup, rates, now)
}

// runSpeculative runs fn against a structural clone of fleet and copies the
// clone's vehicle state back onto the real registry, by id, once fn
// returns. This is the shadow registry a speculative pass mutates instead
// of the live fleet.
func runSpeculative(fleet *Fleet, fn func(shadow *Fleet) []booking.Booking) []booking.Booking {
	shadow := fleet.Clone()
	left := fn(shadow)
	for _, sv := range shadow.Vehicles {
		if rv := fleet.ByID(sv.ID); rv != nil {
			*rv = *sv
		}
	}
	return left
}

// assignWithUpgrade offers every booking with class < ClassUpgradeMax to
// the assigner as a shadow copy one class higher, so only an upgrade-class
// vehicle can accept it; a booking already at ClassUpgradeMax is returned
// untouched. The real booking (by id, via lookup) keeps its original class
// regardless of which shadow got it assigned.
func assignWithUpgrade(pool []booking.Booking, fleet *Fleet, lookup BookingLookup, rates *pricing.Table) []booking.Booking {
	shadows := make([]booking.Booking, 0, len(pool))
	var maxedOut []booking.Booking
	for _, b := range pool {
		if b.Class >= ClassUpgradeMax {
			maxedOut = append(maxedOut, b)
			continue
		}
		shadow := b
		shadow.Class++
		shadows = append(shadows, shadow)
	}

	leftShadows := Assign(shadows, fleet, lookup, rates, AssignOptions{})

	stillUnassigned := make([]booking.Booking, 0, len(leftShadows)+len(maxedOut))
	for _, shadow := range leftShadows {
		if orig, ok := lookup(shadow.ID); ok {
			stillUnassigned = append(stillUnassigned, orig)
		} else {
			stillUnassigned = append(stillUnassigned, shadow)
		}
	}
	return append(stillUnassigned, maxedOut...)
}

// assignUrgent restricts the pool to bookings whose pickup is within
// UrgentWindowMinutes of now, waives the arrival-time test for them, and
// caps each vehicle at OverloadCap bookings in its place. Bookings outside
// the urgent window are returned unassigned for the next tick to retry.
func assignUrgent(pool []booking.Booking, fleet *Fleet, lookup BookingLookup, rates *pricing.Table, now int) []booking.Booking {
	var urgent, notYetUrgent []booking.Booking
	for _, b := range pool {
		if b.PickupTime <= now+UrgentWindowMinutes {
			urgent = append(urgent, b)
		} else {
			notYetUrgent = append(notYetUrgent, b)
		}
	}

	left := Assign(urgent, fleet, lookup, rates, AssignOptions{WaiveAvailability: true, MaxBookings: OverloadCap})
	return append(left, notYetUrgent...)
}

// FinalizeDay applies the one-time home-return leg to every vehicle at the
// close of the simulated day.
func FinalizeDay(fleet *Fleet, lookup BookingLookup, rates *pricing.Table) {
	Finalize(fleet.Vehicles, lookup, rates)
}
