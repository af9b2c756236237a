// Package service implements the read-only admin dashboard view onto a
// running simulation: the latest tick snapshot, held behind a mutex and
// refreshed by the dispatch service's OnTick observer.
package service

import (
	"context"
	"sync"
	"time"

	"dispatch-sim/internal/general/contracts"
	"dispatch-sim/internal/ports"
)

// AdminService serves the admin HTTP handlers from the most recent
// snapshot pushed by the simulation's tick loop.
type AdminService struct {
	mu   sync.RWMutex
	snap contracts.Snapshot
}

// New builds an AdminService with no snapshot yet observed.
func New() *AdminService {
	return &AdminService{}
}

// UpdateSnapshot records the latest tick snapshot. Safe to call from the
// simulation goroutine while HTTP handlers read concurrently.
func (s *AdminService) UpdateSnapshot(snap contracts.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// GetSystemOverview implements ports.AdminService.
func (s *AdminService) GetSystemOverview(_ context.Context) (ports.SystemOverviewResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dist := ports.FleetDistribution{}
	for _, v := range s.snap.Vehicles {
		dist[v.Class]++
	}

	idle := 0
	assigned := 0
	for _, v := range s.snap.Vehicles {
		if len(v.BookingIDs) == 0 {
			idle++
		} else {
			assigned++
		}
	}

	return ports.SystemOverviewResult{
		Timestamp: time.Now().UTC(),
		TickIndex: s.snap.TickIndex,
		TickStart: s.snap.TickStart,
		TickEnd:   s.snap.TickEnd,
		Final:     s.snap.Final,
		Metrics: ports.OverviewMetrics{
			VehicleCount:   len(s.snap.Vehicles),
			IdleVehicles:   idle,
			AssignedCount:  assigned,
			BookingsServed: s.snap.BookingsServed,
			Unassigned:     s.snap.Unassigned,
			ActiveKM:       s.snap.ActiveKM,
			DeadKM:         s.snap.DeadKM,
			DriverPay:      s.snap.DriverPay,
			CustomerFare:   s.snap.CustomerFare,
			Profit:         s.snap.Profit,
			Efficiency:     s.snap.Efficiency,
		},
		FleetDistribution: dist,
	}, nil
}

// GetVehicles implements ports.AdminService.
func (s *AdminService) GetVehicles(_ context.Context) (ports.VehiclesResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]ports.VehicleRow, 0, len(s.snap.Vehicles))
	for _, v := range s.snap.Vehicles {
		rows = append(rows, ports.VehicleRow{
			VehicleID:     v.VehicleID,
			Class:         v.Class,
			BookingIDs:    v.BookingIDs,
			ActiveKM:      v.ActiveKM,
			DeadKM:        v.DeadKM,
			DriverPay:     v.DriverPay,
			Efficiency:    v.Efficiency,
			AvailableFrom: v.AvailableFrom,
		})
	}

	return ports.VehiclesResult{
		Timestamp: time.Now().UTC(),
		Vehicles:  rows,
	}, nil
}
