package sim

import (
	"os"

	"golang.org/x/term"

	"planeidler-sim/internal/config"
)

// StdoutWriter writes both flight events and state rows.
type StdoutWriter interface {
	FlightWriter
	StateWriter
}

var stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

// NewStdoutWriter returns a colour writer when STDOUT is a terminal and a
// JSON lines writer otherwise.
func NewStdoutWriter(cfg *config.SimulationConfig) StdoutWriter {
	if stdoutIsTerminal() {
		return NewColorStdoutWriter(cfg)
	}
	return NewJSONStdoutWriter()
}
