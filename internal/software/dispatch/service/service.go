// Package service orchestrates one full simulated day: load input, drive
// the tick-by-tick pipeline, aggregate metrics, and report the result.
package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"dispatch-sim/internal/domain/booking"
	"dispatch-sim/internal/domain/dispatch"
	"dispatch-sim/internal/domain/geo"
	"dispatch-sim/internal/domain/pricing"
	"dispatch-sim/internal/general/contracts"
	"dispatch-sim/internal/general/logger"
	"dispatch-sim/internal/general/report"
	"dispatch-sim/internal/ports"
)

// RunOptions selects input sources and output collaborators for one run.
type RunOptions struct {
	DayStartMinutes int
	DayEndMinutes   int
	TickMinutes     int
	InstantSeed     int64
	PaceMS          int

	Fleet    ports.FleetSource
	Bookings ports.BookingSource
	Instants InstantTemplateSource // may be nil: no instant bookings this run

	Publisher   ports.SnapshotPublisher
	Broadcaster ports.SnapshotBroadcaster
	ReportOut   io.Writer
	ReportExtra io.Writer
}

// InstantTemplateSource supplies the instant-booking templates a run
// should reveal over the day.
type InstantTemplateSource interface {
	LoadTemplates() ([]dispatch.InstantTemplate, error)
}

// Service wires a logger and pricing table to the per-run state.
type Service struct {
	log   *logger.Logger
	rates *pricing.Table
}

// New builds a Service.
func New(log *logger.Logger, rates *pricing.Table) *Service {
	return &Service{log: log, rates: rates}
}

// Result is what Run hands back once the simulated day is finalized.
type Result struct {
	Metrics    []dispatch.VehicleMetrics
	Totals     dispatch.Totals
	Unassigned []booking.Booking
}

// Run loads the day's input, drives every tick, and returns the finalized
// metrics. Per-tick snapshots are written to the report writer and, if
// configured, published/broadcast as they complete.
func (s *Service) Run(ctx context.Context, opts RunOptions) (Result, error) {
	dayStart := opts.DayStartMinutes
	dayEnd := opts.DayEndMinutes

	vehicles, err := opts.Fleet.LoadVehicles(ctx, dayStart)
	if err != nil {
		s.log.Error(ctx, "fleet_load_failed", "failed to load vehicle roster", err, nil)
		return Result{}, fmt.Errorf("load fleet: %w", err)
	}
	scheduled, err := opts.Bookings.LoadScheduled(ctx)
	if err != nil {
		s.log.Error(ctx, "bookings_load_failed", "failed to load scheduled bookings", err, nil)
		return Result{}, fmt.Errorf("load scheduled bookings: %w", err)
	}

	bookings := dispatch.NewBookingSet(scheduled)
	fleet := dispatch.NewFleet(vehicles)

	var instantLoader *dispatch.InstantLoader
	if opts.Instants != nil {
		templates, err := opts.Instants.LoadTemplates()
		if err != nil {
			s.log.Error(ctx, "instant_bookings_load_failed", "failed to load instant booking templates", err, nil)
			return Result{}, fmt.Errorf("load instant bookings: %w", err)
		}
		instantLoader = dispatch.NewInstantLoader(opts.InstantSeed, templates, dayStart, dayEnd)
	}

	writer := report.NewWriter(opts.ReportExtra)

	driver := &dispatch.Driver{
		Clock:    dispatch.Clock{Start: dayStart, End: dayEnd, Step: opts.TickMinutes},
		Fleet:    fleet,
		Bookings: bookings,
		Instants: instantLoader,
		Rates:    s.rates,
		OnTick: func(tick dispatch.TickSnapshot) {
			s.reportTick(ctx, tick, fleet, bookings, writer, opts)
		},
	}
	if opts.PaceMS > 0 {
		driver.Pace = time.Duration(opts.PaceMS) * time.Millisecond
	}

	unassigned, err := driver.Run(ctx)
	if err != nil {
		s.log.Error(ctx, "simulation_run_failed", "tick driver returned an error", err, nil)
		return Result{}, fmt.Errorf("run simulation: %w", err)
	}

	metrics, totals := dispatch.Aggregate(fleet, bookings.Lookup, s.rates, unassigned)
	s.reportFinal(ctx, metrics, totals, bookings, writer, opts)

	return Result{Metrics: metrics, Totals: totals, Unassigned: unassigned}, nil
}

func (s *Service) reportTick(ctx context.Context, tick dispatch.TickSnapshot, fleet *dispatch.Fleet, bookings *dispatch.BookingSet, writer *report.Writer, opts RunOptions) {
	metrics, totals := dispatch.Aggregate(fleet, bookings.Lookup, s.rates, nil)
	assignedSet := fleet.AssignedSet()

	snap := buildSnapshot(tick.Index, tick.Start, tick.End, false, metrics, totals, bookings, assignedSet, opts.DayStartMinutes+opts.TickMinutes*tick.Index)

	if opts.ReportOut != nil {
		writer.WriteTick(opts.ReportOut, snap)
	}
	s.publish(ctx, snap, opts)
}

func (s *Service) reportFinal(ctx context.Context, metrics []dispatch.VehicleMetrics, totals dispatch.Totals, bookings *dispatch.BookingSet, writer *report.Writer, opts RunOptions) {
	assignedSet := map[int]bool{}
	for _, m := range metrics {
		for _, id := range m.BookingIDs {
			assignedSet[id] = true
		}
	}

	snap := buildSnapshot(-1, opts.DayStartMinutes, opts.DayEndMinutes, true, metrics, totals, bookings, assignedSet, opts.DayEndMinutes)

	if opts.ReportOut != nil {
		writer.WriteTick(opts.ReportOut, snap)
	}
	s.publish(ctx, snap, opts)
}

func (s *Service) publish(ctx context.Context, snap contracts.Snapshot, opts RunOptions) {
	if opts.Publisher != nil {
		if err := opts.Publisher.PublishTickSnapshot(ctx, snap); err != nil {
			s.log.Error(ctx, "tick_publish_failed", "failed to publish tick snapshot", err, nil)
		}
	}
	if opts.Broadcaster != nil {
		if err := opts.Broadcaster.Broadcast(snap); err != nil {
			s.log.Error(ctx, "tick_broadcast_failed", "failed to broadcast tick snapshot", err, nil)
		}
	}
}

func buildSnapshot(index, start, end int, final bool, metrics []dispatch.VehicleMetrics, totals dispatch.Totals, bookings *dispatch.BookingSet, assignedSet map[int]bool, lockNow int) contracts.Snapshot {
	vehicleLines := make([]contracts.VehicleLine, 0, len(metrics))
	for _, m := range metrics {
		vehicleLines = append(vehicleLines, contracts.VehicleLine{
			VehicleID:     m.VehicleID,
			Class:         m.Class,
			BookingIDs:    m.BookingIDs,
			ActiveKM:      m.ActiveKM,
			DeadKM:        m.DeadKM,
			DriverPay:     m.DriverPay,
			Efficiency:    m.Efficiency,
			AvailableFrom: m.AvailableFrom,
		})
	}

	bookingLines := make([]contracts.BookingLine, 0, bookings.Len())
	for _, b := range bookings.All() {
		locked := b.PickupTime <= lockNow+dispatch.LockWindowMinutes
		line := contracts.BookingLine{
			BookingID:  b.ID,
			Locked:     locked,
			Origin:     b.Origin.String(),
			Unassigned: !assignedSet[b.ID],
		}
		if assignedSet[b.ID] {
			for _, m := range metrics {
				for _, id := range m.BookingIDs {
					if id == b.ID {
						vid := m.VehicleID
						line.VehicleID = &vid
					}
				}
			}
		}
		bookingLines = append(bookingLines, line)
	}

	return contracts.Snapshot{
		TickIndex:      index,
		TickStart:      geo.FormatMinutes(start),
		TickEnd:        geo.FormatMinutes(end),
		Final:          final,
		Vehicles:       vehicleLines,
		Bookings:       bookingLines,
		ActiveKM:       totals.ActiveKM,
		DeadKM:         totals.DeadKM,
		DriverPay:      totals.DriverPay,
		CustomerFare:   totals.CustomerFare,
		Profit:         totals.Profit,
		Efficiency:     totals.Efficiency,
		BookingsServed: totals.BookingsServed,
		Unassigned:     totals.Unassigned,
	}
}
