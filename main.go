package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch-sim/cmd/simulate"
	"dispatch-sim/cmd/token"
	"dispatch-sim/internal/cli"
)

func main() {
	// quick path for global help
	if len(os.Args) == 2 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		cli.PrintUsage(os.Stdout)
		os.Exit(0)
	}

	// parse mode and collect the remaining args for that mode
	mode, svcArgs, err := cli.ParseMode(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		cli.PrintUsage(os.Stderr)
		os.Exit(2)
	}

	// context cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch mode {

	case cli.ModeSimulate:
		fs := flag.NewFlagSet(cli.ModeSimulate, flag.ContinueOnError)
		vehicles := fs.String("vehicles", "vehicles.json", "path to the day's vehicle roster (JSON)")
		bookings := fs.String("bookings", "bookings.json", "path to the day's scheduled bookings (JSON)")
		instants := fs.String("instant-bookings", "", "path to instant booking templates (JSON); omit for none")
		cfgPath := fs.String("config", "", "path to config.yaml; omit to run with defaults")
		source := fs.String("source", "json", "input source: json | db")
		adminPort := fs.Int("admin-port", 0, "port for the read-only admin API and websocket stream; 0 disables it")
		rabbitmqOn := fs.Bool("rabbitmq", false, "tee each tick snapshot to rabbitmq")
		out := fs.String("out", "", "additionally tee the console report to this file")
		maxConc := fs.Int("max-concurrent", 50, "Maximum number of concurrent admin API requests to process")
		cli.AttachUsage(fs, cli.ModeSimulate)

		if err := fs.Parse(svcArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}
		if *maxConc < 1 {
			fmt.Fprintln(os.Stderr, "Error: --max-concurrent must be >= 1")
			fs.Usage()
			os.Exit(2)
		}

		opts := simulate.Options{
			VehiclesPath:        *vehicles,
			BookingsPath:        *bookings,
			InstantBookingsPath: *instants,
			ConfigPath:          *cfgPath,
			Source:              *source,
			AdminPort:           *adminPort,
			EnableRabbitMQ:      *rabbitmqOn,
			OutPath:             *out,
			MaxConcurrent:       *maxConc,
		}
		if err := simulate.Run(ctx, opts); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	case cli.ModeToken:
		fs := flag.NewFlagSet(cli.ModeToken, flag.ContinueOnError)
		role := fs.String("role", "operator", "token role: operator | viewer")
		cfgPath := fs.String("config", "", "path to config.yaml carrying the signing secret; omit to mint a throwaway secret")
		ttl := fs.Duration("ttl", 2*time.Hour, "token time-to-live")
		cli.AttachUsage(fs, cli.ModeToken)

		if err := fs.Parse(svcArgs); err != nil {
			if err == flag.ErrHelp {
				os.Exit(0)
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(2)
		}

		if err := token.Run(*cfgPath, *role, *ttl); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}

	default:
		// reached by --mode=<value> with an unknown value: ParseMode passes it through unchanged
		fmt.Fprintln(os.Stderr, "Error: unknown mode")
		os.Exit(2)
	}

	// tiny delay to let deferred logs flush on very fast exits
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Millisecond):
	}
}
