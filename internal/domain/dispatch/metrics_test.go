package dispatch

import (
	"testing"

	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/pricing"
	"dispatch-sim/internal/domain/vehicle"
)

func TestAggregate_ComputesTotals(t *testing.T) {
	home := mustPoint(t, 12.90, 77.60)
	p1 := mustPoint(t, 12.91, 77.61)
	d1 := mustPoint(t, 12.95, 77.65)

	b := mustBooking(t, 1, 3, p1, d1, 500, 5)
	bookings := map[int]booking.Booking{1: b}
	lookup := testLookup(bookings)
	rates := pricing.DefaultTable()

	v := vehicle.New(1, 3, home, DayStartMinutes)
	v.AssignedIDs = []int{1}
	Finalize([]*vehicle.Vehicle{v}, lookup, rates)

	idle := vehicle.New(2, 3, home, DayStartMinutes)
	Finalize([]*vehicle.Vehicle{idle}, lookup, rates)

	fleet := NewFleet([]*vehicle.Vehicle{v, idle})
	metrics, totals := Aggregate(fleet, lookup, rates, nil)

	if len(metrics) != 2 {
		t.Fatalf("expected 2 vehicle metrics, got %d", len(metrics))
	}
	if totals.VehicleCount != 2 {
		t.Errorf("VehicleCount = %d, want 2", totals.VehicleCount)
	}
	if totals.IdleVehicles != 1 {
		t.Errorf("IdleVehicles = %d, want 1", totals.IdleVehicles)
	}
	if totals.BookingsServed != 1 {
		t.Errorf("BookingsServed = %d, want 1", totals.BookingsServed)
	}
	wantFare := CustomerFare(b, rates.For(b.Class))
	if totals.CustomerFare != wantFare {
		t.Errorf("CustomerFare = %v, want %v", totals.CustomerFare, wantFare)
	}
	wantProfit := totals.CustomerFare - totals.DriverPay
	if totals.Profit != wantProfit {
		t.Errorf("Profit = %v, want %v", totals.Profit, wantProfit)
	}
}

func TestAggregate_CountsUnassigned(t *testing.T) {
	fleet := NewFleet(nil)
	unassigned := []booking.Booking{mustBooking(t, 1, 3, mustPoint(t, 0, 0), mustPoint(t, 0, 1), 400, 5)}

	_, totals := Aggregate(fleet, testLookup(nil), pricing.DefaultTable(), unassigned)
	if totals.Unassigned != 1 {
		t.Errorf("Unassigned = %d, want 1", totals.Unassigned)
	}
}
