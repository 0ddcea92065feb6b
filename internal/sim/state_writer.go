package sim

import "planeidler-sim/internal/telemetry"

// StateWriter handles airport state snapshots.
type StateWriter interface {
	WriteState(telemetry.StateRow) error
}

// Optional: writers may support batch mode for state rows.
type batchStateWriter interface {
	WriteStates([]telemetry.StateRow) error
}
