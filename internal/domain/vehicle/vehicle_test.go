package vehicle

import (
	"testing"

	"dispatch-sim/internal/domain/booking"
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

func TestAccepts(t *testing.T) {
	home := mustPoint(t, 12.9, 77.6)
	v := New(1, 3, home, 360)

	tests := []struct {
		name  string
		class int
		want  bool
	}{
		{name: "exact class", class: 3, want: true},
		{name: "lower class request", class: 1, want: true},
		{name: "higher class request", class: 5, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := booking.Booking{Class: tt.class}
			if got := v.Accepts(b); got != tt.want {
				t.Errorf("Accepts(class=%v) = %v, want %v", tt.class, got, tt.want)
			}
		})
	}
}

func TestClone_IsIndependent(t *testing.T) {
	home := mustPoint(t, 12.9, 77.6)
	v := New(1, 3, home, 360)
	v.AssignedIDs = []int{1, 2, 3}

	cp := v.Clone()
	cp.AssignedIDs[0] = 99
	cp.ActiveKM = 500

	if v.AssignedIDs[0] == 99 {
		t.Errorf("mutating clone's AssignedIDs affected original")
	}
	if v.ActiveKM == 500 {
		t.Errorf("mutating clone's ActiveKM affected original")
	}
}

func TestSortAssigned(t *testing.T) {
	home := mustPoint(t, 12.9, 77.6)
	v := New(1, 3, home, 360)
	v.AssignedIDs = []int{3, 1, 2}

	pickupTimes := map[int]int{1: 400, 2: 450, 3: 500}
	v.SortAssigned(func(id int) int { return pickupTimes[id] })

	want := []int{1, 2, 3}
	for i, id := range want {
		if v.AssignedIDs[i] != id {
			t.Errorf("AssignedIDs[%d] = %v, want %v", i, v.AssignedIDs[i], id)
		}
	}
}

func TestHasBookings(t *testing.T) {
	home := mustPoint(t, 12.9, 77.6)
	v := New(1, 3, home, 360)
	if v.HasBookings() {
		t.Errorf("new vehicle should have no bookings")
	}
	v.AssignedIDs = []int{1}
	if !v.HasBookings() {
		t.Errorf("vehicle with an assigned id should report HasBookings")
	}
}
