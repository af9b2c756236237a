package dispatch

import (
	"context"
	"time"

	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/pricing"
)

// Default simulated-day bounds and step, expressed as minutes since
// midnight.
const (
	DayStartMinutes = 6 * 60
	DayEndMinutes   = 19 * 60
	TickMinutes     = 30
)

// Clock enumerates the simulated ticks between Start and End.
type Clock struct {
	Start int
	End   int
	Step  int
}

// NewClock builds the default 06:00-19:00, 30-minute-step clock.
func NewClock() Clock {
	return Clock{Start: DayStartMinutes, End: DayEndMinutes, Step: TickMinutes}
}

// Windows returns each [tickStart, tickEnd) window in order.
func (c Clock) Windows() [][2]int {
	var out [][2]int
	for t := c.Start; t < c.End; t += c.Step {
		end := t + c.Step
		if end > c.End {
			end = c.End
		}
		out = append(out, [2]int{t, end})
	}
	return out
}

// TickSnapshot summarizes one completed tick, handed to whatever is
// observing the run (console report, websocket hub, message broker tee).
type TickSnapshot struct {
	Index       int
	Start       int
	End         int
	Revealed    int
	CarriedOver int
	Unassigned  int
}

// Driver orchestrates the whole simulated day: at each tick it reveals due
// instant bookings, runs the locking gate, and — only on ticks that bring
// new work (the first tick's initial load, or a newly revealed instant
// booking) — runs the three-pass reassignment pipeline followed by the
// home-return finalization, reporting the result through OnTick (C9). Once
// every window is exhausted it runs the post-simulation sweep and finalizes
// the fleet once more.
type Driver struct {
	Clock    Clock
	Fleet    *Fleet
	Bookings *BookingSet
	Instants *InstantLoader
	Rates    *pricing.Table

	// Pace, if non-zero, is slept between ticks so a live observer (the
	// admin API, a websocket client) can watch the day unfold instead of
	// the whole run completing instantly.
	Pace time.Duration

	// OnTick, if set, is invoked synchronously after each tick completes.
	OnTick func(TickSnapshot)
}

// Run drives the simulated day to completion, honoring ctx cancellation
// between ticks, and returns whatever bookings never found a vehicle.
func (d *Driver) Run(ctx context.Context) ([]booking.Booking, error) {
	lookup := d.Bookings.Lookup

	var carriedOver []booking.Booking
	firstTick := true

	for i, w := range d.Clock.Windows() {
		if err := ctx.Err(); err != nil {
			return carriedOver, err
		}

		tickStart, tickEnd := w[0], w[1]

		var initialLoad []booking.Booking
		if firstTick {
			initialLoad = append(initialLoad, d.Bookings.All()...)
			firstTick = false
		}

		var revealed []booking.Booking
		if d.Instants != nil {
			revealed = d.Instants.Reveal(tickStart)
			for _, b := range revealed {
				d.Bookings.Add(b)
			}
		}

		pulledBack := PartitionLocked(d.Fleet, tickStart, lookup, d.Rates)

		var unassigned []booking.Booking
		if len(initialLoad) > 0 || len(revealed) > 0 {
			pool := make([]booking.Booking, 0, len(pulledBack)+len(initialLoad)+len(revealed)+len(carriedOver))
			pool = append(pool, pulledBack...)
			pool = append(pool, initialLoad...)
			pool = append(pool, revealed...)
			pool = append(pool, carriedOver...)
			unassigned = Reassign(pool, d.Fleet, lookup, d.Rates, tickStart)
			Finalize(d.Fleet.Vehicles, lookup, d.Rates)
		} else {
			unassigned = make([]booking.Booking, 0, len(pulledBack)+len(carriedOver))
			unassigned = append(unassigned, pulledBack...)
			unassigned = append(unassigned, carriedOver...)
		}
		carriedOver = unassigned

		if d.OnTick != nil {
			d.OnTick(TickSnapshot{
				Index:       i,
				Start:       tickStart,
				End:         tickEnd,
				Revealed:    len(revealed),
				CarriedOver: len(carriedOver),
				Unassigned:  len(unassigned),
			})
		}

		if d.Pace > 0 {
			select {
			case <-ctx.Done():
				return carriedOver, ctx.Err()
			case <-time.After(d.Pace):
			}
		}
	}

	final := PostSimulationSweep(carriedOver, d.Fleet, lookup, d.Rates)
	FinalizeDay(d.Fleet, lookup, d.Rates)
	return final, nil
}
