package sim

import "planeidler-sim/internal/telemetry"

// MultiWriter fan-outs flight events and state rows to multiple writers.
type MultiWriter struct {
	flightWriters []FlightWriter
	stateWriters  []StateWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(fws []FlightWriter, sws []StateWriter) *MultiWriter {
	return &MultiWriter{flightWriters: fws, stateWriters: sws}
}

// WriteFlightEvent sends a flight event to all writers.
func (mw *MultiWriter) WriteFlightEvent(row telemetry.FlightEventRow) error {
	for _, w := range mw.flightWriters {
		if err := w.WriteFlightEvent(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteFlightEvents sends multiple flight events to all writers, using batch if supported.
func (mw *MultiWriter) WriteFlightEvents(rows []telemetry.FlightEventRow) error {
	for _, w := range mw.flightWriters {
		if err := WriteFlightEvents(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteState sends a state row to all state writers.
func (mw *MultiWriter) WriteState(row telemetry.StateRow) error {
	for _, w := range mw.stateWriters {
		if err := w.WriteState(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteStates sends multiple state rows to all state writers, using batch if supported.
func (mw *MultiWriter) WriteStates(rows []telemetry.StateRow) error {
	for _, w := range mw.stateWriters {
		if err := WriteStates(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// SetPurchaser forwards the upgrade purchase callback to writers that support it.
func (mw *MultiWriter) SetPurchaser(fn func(id string) error) {
	for _, w := range mw.flightWriters {
		if p, ok := w.(UpgradePurchaser); ok {
			p.SetPurchaser(fn)
		}
	}
}

// SetAdminStatus forwards the admin API status to writers that display it.
func (mw *MultiWriter) SetAdminStatus(listening bool) {
	for _, w := range mw.flightWriters {
		if a, ok := w.(AdminStatusWriter); ok {
			a.SetAdminStatus(listening)
		}
	}
}
