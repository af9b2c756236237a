// Package simulate implements the `simulate` CLI mode: load a day's fleet
// and bookings, run the tick-by-tick dispatch pipeline, and report the
// result — optionally tee-ing it to RabbitMQ/WebSocket and serving a
// read-only admin API while the run is in flight.
package simulate

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"dispatch-sim/internal/domain/pricing"
	"dispatch-sim/internal/general/config"
	"dispatch-sim/internal/general/contracts"
	"dispatch-sim/internal/general/jwt"
	"dispatch-sim/internal/general/logger"
	"dispatch-sim/internal/general/postgres"
	"dispatch-sim/internal/general/rabbitmq"
	"dispatch-sim/internal/general/websocket"
	"dispatch-sim/internal/ports"
	adminhandler "dispatch-sim/internal/software/admin/handler"
	adminservice "dispatch-sim/internal/software/admin/service"
	"dispatch-sim/internal/software/dispatch/service"
)

// Options collects every flag the simulate mode accepts.
type Options struct {
	VehiclesPath        string
	BookingsPath        string
	InstantBookingsPath string
	ConfigPath          string
	Source              string // "json" | "db"
	AdminPort           int
	EnableRabbitMQ      bool
	OutPath             string
	MaxConcurrent       int
}

// Run wires the simulation and, if requested, the admin API, and blocks
// until the simulated day completes (or ctx is cancelled). With the admin
// API enabled it then keeps blocking until ctx is cancelled or the admin
// server fails.
func Run(ctx context.Context, opts Options) error {
	log := logger.New("dispatch-sim")
	ctx = log.WithRequestID(ctx, "startup-001")

	var cfg *config.Config
	if opts.ConfigPath != "" {
		loaded, err := config.LoadFromFile(opts.ConfigPath)
		if err != nil {
			log.Error(ctx, "config_load_failed", "failed to load configuration", err, nil)
			return err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	rates := pricing.DefaultTable()
	rates.OnFallback(func(class int) {
		log.Info(ctx, "pricing_fallback", "vehicle class has no configured rates, using defaults", map[string]any{"class": class})
	})

	fleetSrc, bookingSrc, closeDB, err := buildInputSources(ctx, cfg, log, opts)
	if err != nil {
		return err
	}
	if closeDB != nil {
		defer closeDB()
	}

	var instantSrc service.InstantTemplateSource
	if opts.InstantBookingsPath != "" {
		instantSrc = service.JSONInstantSource{Path: opts.InstantBookingsPath}
	}

	publisher, closeMQ, err := buildPublisher(ctx, cfg, log, opts)
	if err != nil {
		return err
	}
	if closeMQ != nil {
		defer closeMQ()
	}

	admin := adminservice.New()
	hub := websocket.NewHub(log)

	var out *os.File
	if opts.OutPath != "" {
		f, err := os.Create(opts.OutPath)
		if err != nil {
			log.Error(ctx, "report_file_open_failed", "failed to open report output file", err, nil)
			return err
		}
		defer f.Close()
		out = f
	}

	jwtManager := jwt.NewManager(cfg.JWT.SecretKey, 2*time.Hour)

	var adminErrCh chan error
	if opts.AdminPort > 0 {
		adminErrCh = make(chan error, 1)
		go runAdminServer(ctx, cfg, log, jwtManager, admin, hub, opts, adminErrCh)
	}

	svc := service.New(log, rates)
	runOpts := service.RunOptions{
		DayStartMinutes: cfg.Simulation.DayStartMinutes,
		DayEndMinutes:   cfg.Simulation.DayEndMinutes,
		TickMinutes:     cfg.Simulation.TickMinutes,
		InstantSeed:     cfg.Simulation.InstantSeed,
		PaceMS:          cfg.Simulation.PaceMS,
		Fleet:           fleetSrc,
		Bookings:        bookingSrc,
		Instants:        instantSrc,
		Publisher:       publisher,
		Broadcaster:     tickBroadcaster{admin: admin, hub: hub},
		ReportOut:       os.Stdout,
		ReportExtra:     out,
	}

	result, err := svc.Run(ctx, runOpts)
	if err != nil {
		log.Error(ctx, "simulation_failed", "simulation run failed", err, nil)
		return err
	}

	log.Info(ctx, "simulation_completed", "simulation run completed", map[string]any{
		"bookings_served": result.Totals.BookingsServed,
		"unassigned":      result.Totals.Unassigned,
		"profit":          result.Totals.Profit,
	})

	if adminErrCh != nil {
		select {
		case err := <-adminErrCh:
			if err != nil && err != http.ErrServerClosed {
				return err
			}
		case <-ctx.Done():
		}
	}

	return nil
}

// tickBroadcaster fans a snapshot out to both the admin dashboard's
// in-memory view and any connected websocket clients.
type tickBroadcaster struct {
	admin *adminservice.AdminService
	hub   *websocket.Hub
}

func (b tickBroadcaster) Broadcast(snapshot any) error {
	if snap, ok := snapshot.(contracts.Snapshot); ok {
		b.admin.UpdateSnapshot(snap)
	}
	return b.hub.Broadcast(snapshot)
}

func buildInputSources(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (fleetSrc ports.FleetSource, bookingSrc ports.BookingSource, closeFn func(), err error) {
	switch opts.Source {
	case "", "json":
		return service.JSONFleetSource{Path: opts.VehiclesPath}, service.JSONBookingSource{Path: opts.BookingsPath}, nil, nil
	case "db":
		pool, perr := postgres.NewPool(ctx, cfg, log)
		if perr != nil {
			log.Error(ctx, "db_connection_failed", "failed to initialize postgres pool", perr, nil)
			return nil, nil, nil, perr
		}
		uow := postgres.NewUnitOfWork(pool)
		fleet := service.DBFleetSource{UOW: uow, Repo: postgres.NewFleetRepository()}
		bookings := service.DBBookingSource{UOW: uow, Repo: postgres.NewBookingRepository()}
		return fleet, bookings, pool.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown --source %q: want json or db", opts.Source)
	}
}

func buildPublisher(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (ports.SnapshotPublisher, func(), error) {
	if !opts.EnableRabbitMQ {
		return rabbitmq.NoopPublisher{}, nil, nil
	}

	client, err := rabbitmq.Connect(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "rabbitmq_connect_failed", "failed to connect to rabbitmq", err, nil)
		return nil, nil, err
	}
	pub := &rabbitmq.MQPublisher{Client: client}
	return pub, func() { _ = client.Close() }, nil
}

func runAdminServer(ctx context.Context, cfg *config.Config, log *logger.Logger, jwtManager *jwt.Manager, admin *adminservice.AdminService, hub *websocket.Hub, opts Options, errCh chan<- error) {
	mux := http.NewServeMux()
	httpHandler := adminhandler.NewAdminHTTPHandler(admin, log, jwtManager, hub)
	httpHandler.RegisterRoutes(mux)

	limited := withConcurrencyLimit(opts.MaxConcurrent, mux)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.AdminPort),
		Handler:           limited,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.Info(ctx, "admin_api_started", fmt.Sprintf("admin API listening on port %d", opts.AdminPort), map[string]any{"port": opts.AdminPort})

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "admin_http_server_error", "admin HTTP server terminated with error", err, nil)
		errCh <- err
		return
	}
	errCh <- nil
}

// withConcurrencyLimit wraps an http.Handler with a semaphore-based limiter.
func withConcurrencyLimit(n int, next http.Handler) http.Handler {
	if n <= 0 {
		return next
	}
	sem := make(chan struct{}, n)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case sem <- struct{}{}:
			defer func() { <-sem }()
			next.ServeHTTP(w, r)
		case <-r.Context().Done():
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		}
	})
}
