package postgres

import (
	"context"
	"fmt"

	"dispatch-sim/internal/domain/geo"
	"dispatch-sim/internal/domain/vehicle"
)

// FleetRepository loads the day's static vehicle roster, the database
// counterpart to reading vehicles.json.
type FleetRepository struct{}

// NewFleetRepository constructs a FleetRepository.
func NewFleetRepository() *FleetRepository { return &FleetRepository{} }

// LoadVehicles reads every row of the fleet table and returns it as the
// domain's empty-route Vehicle aggregates, ready for the assigner.
func (r *FleetRepository) LoadVehicles(ctx context.Context, dayStart int) ([]*vehicle.Vehicle, error) {
	tx := MustTxFromContext(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, class, home_lat, home_lng
		FROM fleet_vehicles
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query fleet_vehicles: %w", err)
	}
	defer rows.Close()

	var out []*vehicle.Vehicle
	for rows.Next() {
		var id, class int
		var lat, lng float64
		if err := rows.Scan(&id, &class, &lat, &lng); err != nil {
			return nil, fmt.Errorf("scan fleet_vehicles row: %w", err)
		}
		home, err := geo.NewPoint(lat, lng)
		if err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", id, err)
		}
		out = append(out, vehicle.New(id, class, home, dayStart))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fleet_vehicles: %w", err)
	}
	return out, nil
}
