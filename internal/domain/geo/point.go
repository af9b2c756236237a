// Package geo provides the distance and time oracle the dispatch core treats
// as a pure, injected dependency (C1).
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a latitude/longitude pair.
type Point struct {
	Lat float64
	Lng float64
}

var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

// NewPoint validates and constructs a Point.
func NewPoint(lat, lng float64) (Point, error) {
	if lat < -90 || lat > 90 {
		return Point{}, ErrInvalidLatitude
	}
	if lng < -180 || lng > 180 {
		return Point{}, ErrInvalidLongitude
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// DistanceKM returns the great-circle distance between a and b in kilometers.
// This is the distance oracle the rest of the core treats opaquely.
func DistanceKM(a, b Point) float64 {
	const earthRadiusKM = 6371.0

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKM * c
}

// ParsePickupMinutes parses "HH:MM" into minutes since midnight.
func ParsePickupMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("pickup time %q: expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("pickup time %q: bad hour: %w", s, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("pickup time %q: bad minute: %w", s, err)
	}
	if h < 0 || h > 47 || m < 0 || m > 59 {
		return 0, fmt.Errorf("pickup time %q: out of range", s)
	}
	return h*60 + m, nil
}

// FormatMinutes renders minutes-since-midnight back as "HH:MM" for reports.
func FormatMinutes(mins int) string {
	h := (mins / 60) % 24
	m := mins % 60
	if m < 0 {
		m += 60
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}
