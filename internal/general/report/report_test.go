package report

import (
	"bytes"
	"strings"
	"testing"

	"dispatch-sim/internal/general/contracts"
)

func TestWriteTick_TeesToExtraWriter(t *testing.T) {
	var extra bytes.Buffer
	w := NewWriter(&extra)

	var stdout bytes.Buffer
	snap := contracts.Snapshot{
		TickIndex: 0,
		TickStart: "06:00",
		TickEnd:   "06:30",
		Vehicles: []contracts.VehicleLine{
			{VehicleID: 1, Class: 3, BookingIDs: []int{10}, ActiveKM: 5, DeadKM: 1, DriverPay: 90, Efficiency: 0.83, AvailableFrom: 400},
		},
		Unassigned: 0,
	}

	w.WriteTick(&stdout, snap)

	if stdout.String() != extra.String() {
		t.Errorf("stdout and extra tee diverged")
	}
	if !strings.Contains(stdout.String(), "tick 0") {
		t.Errorf("expected tick label in output, got %q", stdout.String())
	}
	if !strings.Contains(stdout.String(), "06:00") {
		t.Errorf("expected tick start in output, got %q", stdout.String())
	}
}

func TestWriteTick_FinalLabel(t *testing.T) {
	var stdout bytes.Buffer
	w := NewWriter(nil)
	w.WriteTick(&stdout, contracts.Snapshot{Final: true, TickStart: "06:00", TickEnd: "19:00"})

	if !strings.Contains(stdout.String(), "== final") {
		t.Errorf("expected final label, got %q", stdout.String())
	}
}
