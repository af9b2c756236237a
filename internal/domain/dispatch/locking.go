package dispatch

import (
	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/pricing"
)

// LockWindowMinutes is how far into the future a booking's pickup must fall
// before it is frozen against reassignment (C6).
const LockWindowMinutes = 120

// PartitionLocked splits every vehicle's route at now+LockWindowMinutes:
// bookings picking up at or before the boundary stay put, the rest are
// pulled back out and returned so the pipeline can re-offer them to the
// whole fleet. Every vehicle's AvailableFrom is also re-pinned here to
// max(now, latest completion time among what stays locked); apart from
// this re-pin, only the assigner's commit moves that field, and only
// forward.
//
// AvailableFrom is never walked backward by that re-pin: the vehicle
// already committed real driving time to reach whatever tail it had, and
// a freshly-pulled booking might still beat it back into the same slot.
// Treating the vehicle as busy until its previous commitment is the
// conservative reading; it costs a little idle time rather than risking a
// route that cannot physically be driven.
func PartitionLocked(fleet *Fleet, now int, lookup BookingLookup, rates *pricing.Table) []booking.Booking {
	var pulledBack []booking.Booking

	for _, v := range fleet.Vehicles {
		var locked, unlocked []int
		boundary := now
		for _, id := range v.AssignedIDs {
			b, ok := lookup(id)
			if !ok {
				continue
			}
			if b.PickupTime <= now+LockWindowMinutes {
				locked = append(locked, id)
				if ct := b.CompletionTime(); ct > boundary {
					boundary = ct
				}
			} else {
				unlocked = append(unlocked, id)
			}
		}

		if boundary > v.AvailableFrom {
			v.AvailableFrom = boundary
		}

		if len(unlocked) == 0 {
			continue
		}
		for _, id := range unlocked {
			if b, ok := lookup(id); ok {
				pulledBack = append(pulledBack, b)
			}
		}
		v.AssignedIDs = locked
		RecomputeNonFinal(v, lookup, rates)
	}

	return pulledBack
}
