package postgres

import (
	"context"
	"fmt"

	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/geo"
)

// BookingRepository loads the day's static scheduled bookings, the database
// counterpart to reading bookings.json. Instant bookings are never
// stored here: they are generated at runtime by the instant loader (C8).
type BookingRepository struct{}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository() *BookingRepository { return &BookingRepository{} }

// LoadScheduled reads every row of the scheduled_bookings table.
func (r *BookingRepository) LoadScheduled(ctx context.Context) ([]booking.Booking, error) {
	tx := MustTxFromContext(ctx)

	rows, err := tx.Query(ctx, `
		SELECT id, class, pickup_lat, pickup_lng, drop_lat, drop_lng,
		       pickup_time_minutes, distance_km, travel_time_minutes
		FROM scheduled_bookings
		ORDER BY pickup_time_minutes, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query scheduled_bookings: %w", err)
	}
	defer rows.Close()

	var out []booking.Booking
	for rows.Next() {
		var id, class, pickupTime, travelTime int
		var pLat, pLng, dLat, dLng, distanceKM float64
		if err := rows.Scan(&id, &class, &pLat, &pLng, &dLat, &dLng, &pickupTime, &distanceKM, &travelTime); err != nil {
			return nil, fmt.Errorf("scan scheduled_bookings row: %w", err)
		}
		pickup, err := geo.NewPoint(pLat, pLng)
		if err != nil {
			return nil, fmt.Errorf("booking %d pickup: %w", id, err)
		}
		drop, err := geo.NewPoint(dLat, dLng)
		if err != nil {
			return nil, fmt.Errorf("booking %d drop: %w", id, err)
		}
		b, err := booking.New(id, class, pickup, drop, pickupTime, distanceKM, travelTime, booking.OriginScheduled)
		if err != nil {
			return nil, fmt.Errorf("booking %d: %w", id, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scheduled_bookings: %w", err)
	}
	return out, nil
}
