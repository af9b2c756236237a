package service

import (
	"context"
	"testing"

	"dispatch-sim/internal/general/contracts"
)

func TestGetSystemOverview_ReflectsLatestSnapshot(t *testing.T) {
	svc := New()
	svc.UpdateSnapshot(contracts.Snapshot{
		TickIndex: 3,
		TickStart: "07:30",
		TickEnd:   "08:00",
		Vehicles: []contracts.VehicleLine{
			{VehicleID: 1, Class: 3, BookingIDs: []int{10}},
			{VehicleID: 2, Class: 5},
		},
		BookingsServed: 1,
		Unassigned:      2,
		ActiveKM:        12.5,
	})

	overview, err := svc.GetSystemOverview(context.Background())
	if err != nil {
		t.Fatalf("GetSystemOverview returned error: %v", err)
	}
	if overview.TickIndex != 3 {
		t.Errorf("TickIndex = %d, want 3", overview.TickIndex)
	}
	if overview.Metrics.VehicleCount != 2 {
		t.Errorf("VehicleCount = %d, want 2", overview.Metrics.VehicleCount)
	}
	if overview.Metrics.IdleVehicles != 1 {
		t.Errorf("IdleVehicles = %d, want 1", overview.Metrics.IdleVehicles)
	}
	if overview.Metrics.AssignedCount != 1 {
		t.Errorf("AssignedCount = %d, want 1", overview.Metrics.AssignedCount)
	}
	if overview.FleetDistribution[3] != 1 || overview.FleetDistribution[5] != 1 {
		t.Errorf("FleetDistribution = %v, want {3:1, 5:1}", overview.FleetDistribution)
	}
}

func TestGetVehicles_BeforeAnySnapshot(t *testing.T) {
	svc := New()
	result, err := svc.GetVehicles(context.Background())
	if err != nil {
		t.Fatalf("GetVehicles returned error: %v", err)
	}
	if len(result.Vehicles) != 0 {
		t.Errorf("expected no vehicles before the first snapshot, got %d", len(result.Vehicles))
	}
}
