// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package command provides the CLI command definitions for lfstress.
//
// It uses urfave/cli/v2 for command parsing. Every flag also reads an
// LFSTRESS_* environment variable.
package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/urfave/cli/v2"

	"code.hybscloud.com/lfds/internal/metrics"
	"code.hybscloud.com/lfds/internal/stress"
)

// Build information, set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

const (
	metaLogger   = "logger"
	metaRecorder = "recorder"
)

type runner func(ctx context.Context, cfg stress.Config, rec *metrics.Recorder, log hclog.Logger) (stress.Report, error)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "lfstress",
		Usage:   "Drive lock-free queues and maps from concurrent workers",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SPSCCommand(),
			MPMCCommand(),
			MapCommand(),
		},
		Before: func(c *cli.Context) error {
			level := hclog.LevelFromString(c.String("log-level"))
			if level == hclog.NoLevel {
				return fmt.Errorf("unknown log level %q", c.String("log-level"))
			}
			c.App.Metadata[metaLogger] = hclog.New(&hclog.LoggerOptions{
				Name:   "lfstress",
				Level:  level,
				Output: c.App.ErrWriter,
			})
			c.App.Metadata[metaRecorder] = metrics.NewRecorder()
			return nil
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Log level: trace, debug, info, warn, error",
			EnvVars: []string{"LFSTRESS_LOG_LEVEL"},
			Value:   "info",
		},
		&cli.StringFlag{
			Name:    "metrics-addr",
			Usage:   "Serve Prometheus metrics on this address while running (e.g., :9090)",
			EnvVars: []string{"LFSTRESS_METRICS_ADDR"},
		},
		&cli.DurationFlag{
			Name:    "duration",
			Aliases: []string{"d"},
			Usage:   "Abort the run after this long",
			EnvVars: []string{"LFSTRESS_DURATION"},
			Value:   time.Minute,
		},
	}
}

func capacityFlag(value int) cli.Flag {
	return &cli.IntFlag{
		Name:    "capacity",
		Aliases: []string{"c"},
		Usage:   "Capacity, a power of 2 and at least 2",
		EnvVars: []string{"LFSTRESS_CAPACITY"},
		Value:   value,
	}
}

func queueFlags(capacity int) []cli.Flag {
	return []cli.Flag{
		capacityFlag(capacity),
		&cli.IntFlag{
			Name:    "items",
			Aliases: []string{"n"},
			Usage:   "Items per producer",
			EnvVars: []string{"LFSTRESS_ITEMS"},
			Value:   1_000_000,
		},
	}
}

// SPSCCommand returns the spsc command.
func SPSCCommand() *cli.Command {
	return &cli.Command{
		Name:   "spsc",
		Usage:  "One producer and one consumer over an SPSC queue",
		Flags:  queueFlags(1024),
		Action: runAction(stress.RunSPSC),
	}
}

// MPMCCommand returns the mpmc command.
func MPMCCommand() *cli.Command {
	return &cli.Command{
		Name:  "mpmc",
		Usage: "Many producers and consumers over an MPMC queue",
		Flags: append(queueFlags(1024),
			&cli.IntFlag{
				Name:    "producers",
				Aliases: []string{"p"},
				Usage:   "Producer goroutines",
				EnvVars: []string{"LFSTRESS_PRODUCERS"},
				Value:   4,
			},
			&cli.IntFlag{
				Name:    "consumers",
				Aliases: []string{"C"},
				Usage:   "Consumer goroutines",
				EnvVars: []string{"LFSTRESS_CONSUMERS"},
				Value:   4,
			},
		),
		Action: runAction(stress.RunMPMC),
	}
}

// MapCommand returns the map command.
func MapCommand() *cli.Command {
	return &cli.Command{
		Name:  "map",
		Usage: "Concurrent insert, lookup and remove over a hash map",
		Flags: []cli.Flag{
			capacityFlag(16),
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Worker goroutines, each owning a key range",
				EnvVars: []string{"LFSTRESS_WORKERS"},
				Value:   8,
			},
			&cli.IntFlag{
				Name:    "keys",
				Aliases: []string{"k"},
				Usage:   "Keys per worker",
				EnvVars: []string{"LFSTRESS_KEYS"},
				Value:   100_000,
			},
			&cli.IntFlag{
				Name:    "lookups",
				Usage:   "Random lookups of other workers' keys per worker",
				EnvVars: []string{"LFSTRESS_LOOKUPS"},
				Value:   100_000,
			},
		},
		Action: runAction(stress.RunMap),
	}
}

// ParseConfig extracts a stress.Config from the command flags. Flags a
// command does not define read as zero.
func ParseConfig(c *cli.Context) stress.Config {
	return stress.Config{
		Capacity:  c.Int("capacity"),
		Producers: c.Int("producers"),
		Consumers: c.Int("consumers"),
		Items:     c.Int("items"),
		Workers:   c.Int("workers"),
		Keys:      c.Int("keys"),
		Lookups:   c.Int("lookups"),
	}
}

// Logger retrieves the logger installed by the Before hook.
func Logger(c *cli.Context) hclog.Logger {
	if log, ok := c.App.Metadata[metaLogger].(hclog.Logger); ok {
		return log
	}
	return hclog.NewNullLogger()
}

// Recorder retrieves the metrics recorder installed by the Before hook.
func Recorder(c *cli.Context) *metrics.Recorder {
	if rec, ok := c.App.Metadata[metaRecorder].(*metrics.Recorder); ok {
		return rec
	}
	return metrics.NewRecorder()
}

func runAction(run runner) cli.ActionFunc {
	return func(c *cli.Context) error {
		log := Logger(c).Named(c.Command.Name)
		rec := Recorder(c)

		ctx, cancel := context.WithTimeout(c.Context, c.Duration("duration"))
		defer cancel()

		if addr := c.String("metrics-addr"); addr != "" {
			stop, err := serveMetrics(addr, rec, log)
			if err != nil {
				return err
			}
			defer stop()
		}

		rep, err := run(ctx, ParseConfig(c), rec, log)
		if err != nil {
			return err
		}
		printReport(c, rep)
		return nil
	}
}

// serveMetrics exposes rec on addr until the returned stop function is
// called.
func serveMetrics(addr string, rec *metrics.Recorder, log hclog.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", rec.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", "error", err)
		}
	}()
	log.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("metrics server shutdown", "error", err)
		}
	}, nil
}

func printReport(c *cli.Context, rep stress.Report) {
	w := c.App.Writer
	fmt.Fprintf(w, "structure:   %s\n", rep.Structure)
	fmt.Fprintf(w, "elapsed:     %s\n", rep.Elapsed)
	fmt.Fprintf(w, "ops/sec:     %.0f\n", rep.OpsPerSec())
	if rep.Structure == "map" {
		fmt.Fprintf(w, "inserted:    %d\n", rep.Inserted)
		fmt.Fprintf(w, "rejected:    %d\n", rep.Rejected)
		fmt.Fprintf(w, "removed:     %d\n", rep.Removed)
		fmt.Fprintf(w, "found:       %d\n", rep.Found)
		fmt.Fprintf(w, "lost:        %d\n", rep.Lost)
		fmt.Fprintf(w, "unremoved:   %d\n", rep.Unremoved)
		fmt.Fprintf(w, "capacity:    %d\n", rep.FinalCap)
		return
	}
	fmt.Fprintf(w, "produced:    %d\n", rep.Produced)
	fmt.Fprintf(w, "consumed:    %d\n", rep.Consumed)
	fmt.Fprintf(w, "would block: %d\n", rep.Blocked)
}
