package service

import (
	"context"

	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/vehicle"
	"dispatch-sim/internal/general/postgres"
)

// DBFleetSource adapts FleetRepository behind a unit of work, satisfying
// ports.FleetSource for --source=db runs.
type DBFleetSource struct {
	UOW  postgres.UnitOfWork
	Repo *postgres.FleetRepository
}

func (s DBFleetSource) LoadVehicles(ctx context.Context, dayStart int) ([]*vehicle.Vehicle, error) {
	var out []*vehicle.Vehicle
	err := s.UOW.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		out, err = s.Repo.LoadVehicles(txCtx, dayStart)
		return err
	})
	return out, err
}

// DBBookingSource adapts BookingRepository behind a unit of work.
type DBBookingSource struct {
	UOW  postgres.UnitOfWork
	Repo *postgres.BookingRepository
}

func (s DBBookingSource) LoadScheduled(ctx context.Context) ([]booking.Booking, error) {
	var out []booking.Booking
	err := s.UOW.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		out, err = s.Repo.LoadScheduled(txCtx)
		return err
	})
	return out, err
}
