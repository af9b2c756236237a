package dispatch

import (
	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/pricing"
)

// VehicleMetrics is the finalized per-vehicle accounting line.
type VehicleMetrics struct {
	VehicleID     int
	Class         int
	BookingIDs    []int
	ActiveKM      float64
	DeadKM        float64
	DriverPay     float64
	Efficiency    float64
	AvailableFrom int
}

// Totals is the whole-fleet rollup.
type Totals struct {
	ActiveKM       float64
	DeadKM         float64
	DriverPay      float64
	CustomerFare   float64
	Profit         float64
	Efficiency     float64
	VehicleCount   int
	IdleVehicles   int
	BookingsServed int
	Unassigned     int
}

// Aggregate builds the final per-vehicle metrics and whole-fleet totals once
// the day has been finalized (Finalize/FinalizeDay must run first so every
// vehicle's dead km already includes its return-home leg).
func Aggregate(fleet *Fleet, lookup BookingLookup, rates *pricing.Table, unassigned []booking.Booking) ([]VehicleMetrics, Totals) {
	metrics := make([]VehicleMetrics, 0, len(fleet.Vehicles))
	var totals Totals
	totals.VehicleCount = len(fleet.Vehicles)

	for _, v := range fleet.Vehicles {
		if !v.HasBookings() {
			totals.IdleVehicles++
		}
		metrics = append(metrics, VehicleMetrics{
			VehicleID:     v.ID,
			Class:         v.Class,
			BookingIDs:    append([]int(nil), v.AssignedIDs...),
			ActiveKM:      v.ActiveKM,
			DeadKM:        v.DeadKM,
			DriverPay:     v.DriverPay,
			Efficiency:    Efficiency(v.ActiveKM, v.DeadKM),
			AvailableFrom: v.AvailableFrom,
		})
		totals.ActiveKM += v.ActiveKM
		totals.DeadKM += v.DeadKM
		totals.DriverPay += v.DriverPay
		totals.BookingsServed += len(v.AssignedIDs)
	}

	for _, v := range fleet.Vehicles {
		for _, id := range v.AssignedIDs {
			if b, ok := lookup(id); ok {
				totals.CustomerFare += CustomerFare(b, rates.For(b.Class))
			}
		}
	}

	totals.Profit = totals.CustomerFare - totals.DriverPay
	totals.Efficiency = Efficiency(totals.ActiveKM, totals.DeadKM)
	totals.Unassigned = len(unassigned)

	return metrics, totals
}
