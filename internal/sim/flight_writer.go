package sim

import "planeidler-sim/internal/telemetry"

// FlightWriter handles flight lifecycle events.
type FlightWriter interface {
	WriteFlightEvent(telemetry.FlightEventRow) error
}

// Optional: flight writers may support batch mode.
type batchFlightWriter interface {
	WriteFlightEvents([]telemetry.FlightEventRow) error
}

// WriteFlightEvents sends rows to w, in one batch when w supports it.
func WriteFlightEvents(w FlightWriter, rows []telemetry.FlightEventRow) error {
	if bw, ok := w.(batchFlightWriter); ok {
		return bw.WriteFlightEvents(rows)
	}
	for _, r := range rows {
		if err := w.WriteFlightEvent(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteStates sends rows to w, in one batch when w supports it.
func WriteStates(w StateWriter, rows []telemetry.StateRow) error {
	if bw, ok := w.(batchStateWriter); ok {
		return bw.WriteStates(rows)
	}
	for _, r := range rows {
		if err := w.WriteState(r); err != nil {
			return err
		}
	}
	return nil
}
