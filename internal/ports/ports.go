// Package ports declares the interfaces internal/software/dispatch/service
// depends on, so it can be wired against either the JSON loaders or the
// Postgres-backed repositories without caring which.
package ports

import (
	"context"
	"time"

	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/vehicle"
)

// FleetSource loads the day's static vehicle roster.
type FleetSource interface {
	LoadVehicles(ctx context.Context, dayStart int) ([]*vehicle.Vehicle, error)
}

// BookingSource loads the day's static scheduled bookings.
type BookingSource interface {
	LoadScheduled(ctx context.Context) ([]booking.Booking, error)
}

// UnitOfWork scopes a block of repository calls to one transaction.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SnapshotPublisher is the narrow interface the tick driver's observer uses
// to tee a snapshot out to RabbitMQ; a disabled run wires in a no-op.
type SnapshotPublisher interface {
	PublishTickSnapshot(ctx context.Context, snapshot any) error
}

// SnapshotBroadcaster is the narrow interface used to push a snapshot to
// connected WebSocket dashboard clients; a disabled run wires in a no-op.
type SnapshotBroadcaster interface {
	Broadcast(snapshot any) error
}

// NoopBroadcaster discards every snapshot.
type NoopBroadcaster struct{}

func (NoopBroadcaster) Broadcast(any) error { return nil }

// ----- Admin service DTOs -----

// FleetDistribution shows the live vehicle count by class.
type FleetDistribution map[int]int

// OverviewMetrics is the whole-fleet rollup shown on the admin dashboard.
type OverviewMetrics struct {
	VehicleCount   int     `json:"vehicle_count"`
	IdleVehicles   int     `json:"idle_vehicles"`
	AssignedCount  int     `json:"assigned_count"`
	BookingsServed int     `json:"bookings_served"`
	Unassigned     int     `json:"unassigned"`
	ActiveKM       float64 `json:"active_km"`
	DeadKM         float64 `json:"dead_km"`
	DriverPay      float64 `json:"driver_pay"`
	CustomerFare   float64 `json:"customer_fare"`
	Profit         float64 `json:"profit"`
	Efficiency     float64 `json:"efficiency"`
}

// SystemOverviewResult is the response DTO for GET /admin/overview.
type SystemOverviewResult struct {
	Timestamp         time.Time         `json:"timestamp"`
	TickIndex         int               `json:"tick_index"`
	TickStart         string            `json:"tick_start"`
	TickEnd           string            `json:"tick_end"`
	Final             bool              `json:"final"`
	Metrics           OverviewMetrics   `json:"metrics"`
	FleetDistribution FleetDistribution `json:"fleet_distribution"`
}

// VehicleRow is a single vehicle row in the admin fleet listing.
type VehicleRow struct {
	VehicleID     int     `json:"vehicle_id"`
	Class         int     `json:"class"`
	BookingIDs    []int   `json:"booking_ids"`
	ActiveKM      float64 `json:"active_km"`
	DeadKM        float64 `json:"dead_km"`
	DriverPay     float64 `json:"driver_pay"`
	Efficiency    float64 `json:"efficiency"`
	AvailableFrom int     `json:"available_from"`
}

// VehiclesResult is the response DTO for GET /admin/vehicles.
type VehiclesResult struct {
	Timestamp time.Time    `json:"timestamp"`
	Vehicles  []VehicleRow `json:"vehicles"`
}

// AdminService exposes read-only monitoring of the running simulation.
type AdminService interface {
	GetSystemOverview(ctx context.Context) (SystemOverviewResult, error)
	GetVehicles(ctx context.Context) (VehiclesResult, error)
}
