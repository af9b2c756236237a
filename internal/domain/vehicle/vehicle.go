// Package vehicle is the mutable fleet aggregate the dispatch core assigns
// bookings onto. All mutation is confined to the assigner and
// reassignment pipeline; vehicles are never aliased across concurrent
// iterations of a pool.
package vehicle

import (
	"sort"

	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/geo"
)

// Vehicle is a single fleet unit that departs from and returns to Home.
type Vehicle struct {
	ID    int
	Class int
	Home  geo.Point

	// AssignedIDs is ordered by pickup time ascending.
	AssignedIDs []int

	ActiveKM  float64
	DeadKM    float64
	DriverPay float64

	// AvailableFrom is the earliest minute this vehicle can start its next
	// unassigned work.
	AvailableFrom int
}

// New constructs an empty vehicle available from the simulation's day_start.
func New(id, class int, home geo.Point, dayStart int) *Vehicle {
	return &Vehicle{
		ID:            id,
		Class:         class,
		Home:          home,
		AvailableFrom: dayStart,
	}
}

// Clone returns a deep, independent copy.
func (v *Vehicle) Clone() *Vehicle {
	cp := *v
	cp.AssignedIDs = append([]int(nil), v.AssignedIDs...)
	return &cp
}

// HasBookings reports whether the vehicle currently carries any work.
func (v *Vehicle) HasBookings() bool {
	return len(v.AssignedIDs) > 0
}

// Accepts reports whether the vehicle's class can carry booking b.
func (v *Vehicle) Accepts(b booking.Booking) bool {
	return v.Class >= b.Class
}

// SortAssigned re-sorts AssignedIDs by each id's pickup time, resolving by
// the lookup function supplied by the caller (the pool owns the booking set).
func (v *Vehicle) SortAssigned(pickupTimeOf func(id int) int) {
	sort.SliceStable(v.AssignedIDs, func(i, j int) bool {
		return pickupTimeOf(v.AssignedIDs[i]) < pickupTimeOf(v.AssignedIDs[j])
	})
}

// Route returns the polyline (pickup1, drop1, pickup2, drop2, ...) induced by
// AssignedIDs, in order.
func (v *Vehicle) Route(bookingOf func(id int) booking.Booking) []geo.Point {
	route := make([]geo.Point, 0, 2*len(v.AssignedIDs))
	for _, id := range v.AssignedIDs {
		b := bookingOf(id)
		route = append(route, b.Pickup, b.Drop)
	}
	return route
}
