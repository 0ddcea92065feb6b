package main

import (
	"os"

	"planeidler-sim/internal/config"
	"planeidler-sim/internal/sim"
)

type writerOptions struct {
	printOnly bool
	tui       bool
	logFile   string
}

type writers struct {
	flights sim.FlightWriter
	states  sim.StateWriter
	tui     *sim.TUIWriter
	cleanup func()
}

// newWriters sets up flight and state writers based on flags and env vars.
// A log file adds a JSONL copy of both streams next to the primary sink.
func newWriters(cfg *config.SimulationConfig, opts writerOptions) (*writers, error) {
	w := &writers{cleanup: func() {}}

	base, err := baseWriter(cfg, opts)
	if err != nil {
		return nil, err
	}
	if tw, ok := base.(*sim.TUIWriter); ok {
		w.tui = tw
		w.cleanup = func() { tw.Close() }
	}
	w.flights, w.states = base, base
	if opts.logFile == "" {
		return w, nil
	}

	fw, err := sim.NewFileWriter(opts.logFile, opts.logFile+".state")
	if err != nil {
		w.cleanup()
		return nil, err
	}
	mw := sim.NewMultiWriter([]sim.FlightWriter{base, fw}, []sim.StateWriter{base, fw})
	w.flights, w.states = mw, mw
	prev := w.cleanup
	w.cleanup = func() {
		fw.Close()
		prev()
	}
	return w, nil
}

// baseWriter picks the TUI, STDOUT or GreptimeDB.
func baseWriter(cfg *config.SimulationConfig, opts writerOptions) (sim.StdoutWriter, error) {
	if opts.tui {
		return sim.NewTUIWriter(cfg), nil
	}
	endpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	if opts.printOnly || endpoint == "" {
		return sim.NewStdoutWriter(cfg), nil
	}
	gw, err := sim.NewGreptimeDBWriter(
		endpoint,
		envOr("GREPTIMEDB_DATABASE", "public"),
		os.Getenv("GREPTIMEDB_EVENTS_TABLE"),
		os.Getenv("GREPTIMEDB_STATE_TABLE"),
	)
	if err != nil {
		return nil, err
	}
	return gw, nil
}

// newFlightWriter creates a flight event writer for replays.
func newFlightWriter(printOnly bool) (sim.FlightWriter, error) {
	w, err := newWriters(nil, writerOptions{printOnly: printOnly})
	if err != nil {
		return nil, err
	}
	return w.flights, nil
}
