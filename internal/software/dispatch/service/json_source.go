package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/dispatch"
	"dispatch-sim/internal/domain/geo"
	"dispatch-sim/internal/domain/vehicle"
	"dispatch-sim/internal/general/contracts"
)

// JSONFleetSource loads vehicles.json.
type JSONFleetSource struct {
	Path string
}

func (s JSONFleetSource) LoadVehicles(_ context.Context, dayStart int) ([]*vehicle.Vehicle, error) {
	var rows []contracts.VehicleInput
	if err := readJSON(s.Path, &rows); err != nil {
		return nil, err
	}

	out := make([]*vehicle.Vehicle, 0, len(rows))
	for _, r := range rows {
		home, err := geo.NewPoint(r.HomeLat, r.HomeLng)
		if err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", r.VehicleID, err)
		}
		class, err := contracts.ParseVehicleClass(r.VehicleType)
		if err != nil {
			return nil, fmt.Errorf("vehicle %d: %w", r.VehicleID, err)
		}
		out = append(out, vehicle.New(r.VehicleID, class, home, dayStart))
	}
	return out, nil
}

// JSONBookingSource loads bookings.json, the day's scheduled bookings.
// Every row must carry a pickup_time.
type JSONBookingSource struct {
	Path string
}

func (s JSONBookingSource) LoadScheduled(_ context.Context) ([]booking.Booking, error) {
	var rows []contracts.BookingInput
	if err := readJSON(s.Path, &rows); err != nil {
		return nil, err
	}

	out := make([]booking.Booking, 0, len(rows))
	for _, r := range rows {
		b, err := bookingFromInput(r, booking.OriginScheduled)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// JSONInstantSource loads instant_bookings.json: the same shape as
// bookings.json, pickup time included. What the instant loader assigns
// deterministically is each booking's load (request) time, not its pickup.
type JSONInstantSource struct {
	Path string
}

func (s JSONInstantSource) LoadTemplates() ([]dispatch.InstantTemplate, error) {
	var rows []contracts.BookingInput
	if err := readJSON(s.Path, &rows); err != nil {
		return nil, err
	}

	out := make([]dispatch.InstantTemplate, 0, len(rows))
	for _, r := range rows {
		pickup, err := geo.NewPoint(r.PickupLat, r.PickupLon)
		if err != nil {
			return nil, fmt.Errorf("instant booking %d pickup: %w", r.BookingID, err)
		}
		drop, err := geo.NewPoint(r.DropLat, r.DropLon)
		if err != nil {
			return nil, fmt.Errorf("instant booking %d drop: %w", r.BookingID, err)
		}
		class, err := contracts.ParseVehicleClass(r.VehicleType)
		if err != nil {
			return nil, fmt.Errorf("instant booking %d: %w", r.BookingID, err)
		}
		pickupMinutes, err := geo.ParsePickupMinutes(r.PickupTime)
		if err != nil {
			return nil, fmt.Errorf("instant booking %d: %w", r.BookingID, err)
		}
		out = append(out, dispatch.InstantTemplate{
			ID:         r.BookingID,
			Class:      class,
			Pickup:     pickup,
			Drop:       drop,
			PickupTime: pickupMinutes,
			DistanceKM: r.DistanceKM,
			TravelTime: r.TravelTime,
		})
	}
	return out, nil
}

func bookingFromInput(r contracts.BookingInput, origin booking.Origin) (booking.Booking, error) {
	pickup, err := geo.NewPoint(r.PickupLat, r.PickupLon)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("booking %d pickup: %w", r.BookingID, err)
	}
	drop, err := geo.NewPoint(r.DropLat, r.DropLon)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("booking %d drop: %w", r.BookingID, err)
	}
	class, err := contracts.ParseVehicleClass(r.VehicleType)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("booking %d: %w", r.BookingID, err)
	}
	pickupMinutes, err := geo.ParsePickupMinutes(r.PickupTime)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("booking %d: %w", r.BookingID, err)
	}
	return booking.New(r.BookingID, class, pickup, drop, pickupMinutes, r.DistanceKM, r.TravelTime, origin)
}

func readJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
