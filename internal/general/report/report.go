// Package report renders a Snapshot as the human-readable console/tee-file
// output.
package report

import (
	"fmt"
	"io"
	"strings"

	"dispatch-sim/internal/general/contracts"
)

// Writer tees a rendered report to both stdout and, if non-nil, an
// additional file handle.
type Writer struct {
	extra io.Writer
}

// NewWriter builds a Writer; extra may be nil to print to stdout only.
func NewWriter(extra io.Writer) *Writer {
	return &Writer{extra: extra}
}

// WriteTick renders one tick's snapshot.
func (w *Writer) WriteTick(stdout io.Writer, snap contracts.Snapshot) {
	w.write(stdout, render(snap))
}

func (w *Writer) write(stdout io.Writer, s string) {
	fmt.Fprint(stdout, s)
	if w.extra != nil {
		fmt.Fprint(w.extra, s)
	}
}

func render(snap contracts.Snapshot) string {
	var b strings.Builder

	label := fmt.Sprintf("tick %d", snap.TickIndex)
	if snap.Final {
		label = "final"
	}
	fmt.Fprintf(&b, "== %s [%s - %s] ==\n", label, snap.TickStart, snap.TickEnd)

	fmt.Fprintf(&b, "%-6s %-5s %-24s %10s %10s %10s %10s %9s\n",
		"veh", "class", "bookings", "active_km", "dead_km", "pay", "eff", "avail")
	for _, v := range snap.Vehicles {
		fmt.Fprintf(&b, "%-6d %-5d %-24v %10.2f %10.2f %10.2f %10.2f %9d\n",
			v.VehicleID, v.Class, v.BookingIDs, v.ActiveKM, v.DeadKM, v.DriverPay, v.Efficiency, v.AvailableFrom)
	}

	fmt.Fprintf(&b, "%-6s %-8s %-10s %-10s\n", "book", "locked", "origin", "vehicle")
	for _, bk := range snap.Bookings {
		vehStr := "UNASSIGNED"
		if !bk.Unassigned && bk.VehicleID != nil {
			vehStr = fmt.Sprintf("%d", *bk.VehicleID)
		}
		fmt.Fprintf(&b, "%-6d %-8t %-10s %-10s\n", bk.BookingID, bk.Locked, bk.Origin, vehStr)
	}

	fmt.Fprintf(&b, "active_km=%.2f dead_km=%.2f pay=%.2f fare=%.2f profit=%.2f efficiency=%.3f served=%d unassigned=%d\n\n",
		snap.ActiveKM, snap.DeadKM, snap.DriverPay, snap.CustomerFare, snap.Profit, snap.Efficiency,
		snap.BookingsServed, snap.Unassigned)

	return b.String()
}
