// civictrack-viewer is a terminal client for a civictrack server. It lists
// the issues around a map center, lets the user search addresses and
// report new issues, and follows the server's live stream so reports from
// other people appear as they are made.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"civictrack/models"
	"civictrack/viewer"
	"civictrack/viewer/prefs"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	server   string
	lat      float64
	lng      float64
	radius   float64
	status   string
	category string
	prefs    string
	logFile  string
	logLevel string
}

func run() error {
	_ = godotenv.Load()

	var opts options
	flagSet := pflag.NewFlagSet("civictrack-viewer", pflag.ContinueOnError)
	flagSet.StringVar(&opts.server, "server", envOr("CIVICTRACK_SERVER", "http://localhost:8080"), "civictrack server base URL")
	flagSet.Float64Var(&opts.lat, "lat", models.DefaultLatitude, "initial map center latitude")
	flagSet.Float64Var(&opts.lng, "lng", models.DefaultLongitude, "initial map center longitude")
	flagSet.Float64Var(&opts.radius, "radius", models.DefaultRadiusKm, "search radius in kilometers")
	flagSet.StringVar(&opts.status, "status", "", "only show issues with this status")
	flagSet.StringVar(&opts.category, "category", "", "only show issues in this category")
	flagSet.StringVar(&opts.prefs, "prefs", "", "preferences file (default: <user config dir>/civictrack/viewer.yaml)")
	flagSet.StringVar(&opts.logFile, "log-file", "", "write JSON log records to this file")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "log level for --log-file")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	status, category := models.IssueStatus(opts.status), models.IssueCategory(opts.category)
	if status != "" && !status.Valid() {
		return fmt.Errorf("--status: %w", models.ErrInvalidStatus)
	}
	if category != "" && !category.Valid() {
		return fmt.Errorf("--category: %w", models.ErrInvalidCategory)
	}

	closeLog, err := setupLogging(opts.logFile, opts.logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	prefsPath := opts.prefs
	if prefsPath == "" {
		if prefsPath, err = prefs.DefaultPath(); err != nil {
			return fmt.Errorf("cannot locate preferences: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	client := viewer.NewAPIClient(opts.server)
	v := viewer.New(client, viewer.Config{
		RadiusKm: opts.radius,
		Status:   status,
		Category: category,
		Themes:   &prefs.File{Path: prefsPath},
	})
	defer v.Close()

	if err := v.SetCenter(ctx, viewer.LatLng{Lat: opts.lat, Lng: opts.lng}, viewer.DefaultZoom); err != nil {
		return err
	}

	program := tea.NewProgram(newModel(ctx, v), tea.WithAltScreen(), tea.WithContext(ctx))
	forwardEvents(ctx, v.Events(), program)

	go viewer.NewRelay(client.LiveURL(), v).Run(ctx)

	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// forwardEvents relays viewer events into the program. Events can be
// emitted from inside Update, so handlers only enqueue; a separate
// goroutine delivers them. The model renders from snapshots, so an event
// dropped on a full queue is repaired by the next redraw.
func forwardEvents(ctx context.Context, d *viewer.Dispatcher, program *tea.Program) {
	queue := make(chan viewer.Event, 64)
	d.OnAny(func(e viewer.Event) {
		select {
		case queue <- e:
		default:
		}
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-queue:
				program.Send(viewerEventMsg(e))
			}
		}
	}()
}

func setupLogging(path, level string) (func(), error) {
	if path == "" {
		viewer.SetLogger(zerolog.New(io.Discard))
		return func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file: %w", err)
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	viewer.SetLogger(zerolog.New(f).Level(lvl).With().Timestamp().Str("component", "viewer").Logger())
	return func() { _ = f.Close() }, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
