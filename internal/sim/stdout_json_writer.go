package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"planeidler-sim/internal/telemetry"
)

// JSONStdoutWriter prints flight events and state rows as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
	mu  sync.Mutex
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteFlightEvent outputs a flight event in JSON format.
func (w *JSONStdoutWriter) WriteFlightEvent(row telemetry.FlightEventRow) error {
	return w.emit(row)
}

// WriteFlightEvents outputs multiple flight events in JSON format.
func (w *JSONStdoutWriter) WriteFlightEvents(rows []telemetry.FlightEventRow) error {
	for _, r := range rows {
		if err := w.emit(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteState outputs an airport state row in JSON format.
func (w *JSONStdoutWriter) WriteState(row telemetry.StateRow) error {
	return w.emit(row)
}
