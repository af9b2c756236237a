package booking

import (
	"testing"

	"dispatch-sim/internal/domain/geo"
)

func mustPoint(t *testing.T, lat, lng float64) geo.Point {
	t.Helper()
	p, err := geo.NewPoint(lat, lng)
	if err != nil {
		t.Fatalf("NewPoint(%v, %v): %v", lat, lng, err)
	}
	return p
}

func TestNew_Validation(t *testing.T) {
	pickup := mustPoint(t, 12.9, 77.6)
	drop := mustPoint(t, 13.0, 77.7)

	tests := []struct {
		name       string
		class      int
		distanceKM float64
		travelTime int
		wantErr    error
	}{
		{name: "valid", class: 3, distanceKM: 10, travelTime: 20, wantErr: nil},
		{name: "class too low", class: 0, distanceKM: 10, travelTime: 20, wantErr: ErrInvalidClass},
		{name: "class too high", class: 10, distanceKM: 10, travelTime: 20, wantErr: ErrInvalidClass},
		{name: "negative distance", class: 3, distanceKM: -1, travelTime: 20, wantErr: ErrNegativeDist},
		{name: "negative travel time", class: 3, distanceKM: 10, travelTime: -5, wantErr: ErrNegativeTravel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(1, tt.class, pickup, drop, 400, tt.distanceKM, tt.travelTime, OriginScheduled)
			if err != tt.wantErr {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_DefaultsTravelTime(t *testing.T) {
	pickup := mustPoint(t, 12.9, 77.6)
	drop := mustPoint(t, 13.0, 77.7)

	b, err := New(1, 3, pickup, drop, 400, 10, 0, OriginScheduled)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if b.TravelTime != DefaultTravelTimeMinutes {
		t.Errorf("TravelTime = %v, want default %v", b.TravelTime, DefaultTravelTimeMinutes)
	}
}

func TestCompletionTime(t *testing.T) {
	pickup := mustPoint(t, 12.9, 77.6)
	drop := mustPoint(t, 13.0, 77.7)

	b, err := New(1, 3, pickup, drop, 400, 10, 25, OriginScheduled)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	want := 400 + 25 + ServiceTimeMinutes
	if got := b.CompletionTime(); got != want {
		t.Errorf("CompletionTime() = %v, want %v", got, want)
	}
}
