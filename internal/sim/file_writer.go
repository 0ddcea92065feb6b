package sim

import (
	"encoding/json"
	"os"
	"sync"

	"planeidler-sim/internal/telemetry"
)

// FileWriter writes flight events and state snapshots to JSONL files.
type FileWriter struct {
	eventFile *os.File
	stateFile *os.File
	eventEnc  *json.Encoder
	stateEnc  *json.Encoder
	mu        sync.Mutex
}

// NewFileWriter creates a FileWriter. statePath may be empty to skip state snapshots.
func NewFileWriter(eventsPath, statePath string) (*FileWriter, error) {
	ef, err := os.Create(eventsPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{eventFile: ef, eventEnc: json.NewEncoder(ef)}
	if statePath != "" {
		sf, err := os.Create(statePath)
		if err != nil {
			ef.Close()
			return nil, err
		}
		fw.stateFile = sf
		fw.stateEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// WriteFlightEvent logs a single flight event.
func (f *FileWriter) WriteFlightEvent(row telemetry.FlightEventRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.eventEnc.Encode(row)
}

// WriteFlightEvents logs multiple flight events.
func (f *FileWriter) WriteFlightEvents(rows []telemetry.FlightEventRow) error {
	for _, r := range rows {
		if err := f.WriteFlightEvent(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteState logs an airport state row, if enabled.
func (f *FileWriter) WriteState(row telemetry.StateRow) error {
	if f.stateEnc == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateEnc.Encode(row)
}

// WriteStates logs multiple state rows.
func (f *FileWriter) WriteStates(rows []telemetry.StateRow) error {
	for _, r := range rows {
		if err := f.WriteState(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.eventFile != nil {
		err = f.eventFile.Close()
	}
	if f.stateFile != nil {
		if e := f.stateFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
