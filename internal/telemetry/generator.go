package telemetry

import (
	"time"

	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/state"
)

// Queues summarises the scheduler-owned counts that SimState does not hold.
type Queues struct {
	Holding        int
	DepartureQueue int
	Dwelling       int
	RunwayBusy     bool
	StandsTotal    int
	StandsOccupied int
	TimeScale      float64
}

// Builder stamps rows with the session id and a timestamp.
type Builder struct {
	SessionID string
	now       func() time.Time
}

// NewBuilder creates a row builder for a session.
func NewBuilder(sessionID string) *Builder {
	return &Builder{SessionID: sessionID, now: time.Now}
}

// WithClock overrides the timestamp source.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// StateRow snapshots st and the queue counts.
func (b *Builder) StateRow(st *state.SimState, q Queues) StateRow {
	return StateRow{
		SessionID:      b.SessionID,
		Day:            st.DayIndex,
		Clock:          st.ClockHHMM(),
		ClockMinutes:   st.ClockMinutes,
		Daytime:        st.IsDaytime(),
		Bank:           st.Bank,
		Received:       st.Received,
		Missed:         st.Missed,
		Diverted:       st.Diverted,
		ActiveAircraft: st.ActiveAircraft,
		Holding:        q.Holding,
		DepartureQueue: q.DepartureQueue,
		Dwelling:       q.Dwelling,
		RunwayBusy:     q.RunwayBusy,
		StandsTotal:    q.StandsTotal,
		StandsOccupied: q.StandsOccupied,
		FBOSlotsUsed:   st.FBOSlotsUsed,
		FBOSlotsTotal:  st.FBOSlotsTotal,
		Tier:           st.ProgressionTier,
		TimeScale:      q.TimeScale,
		Timestamp:      b.now().UTC(),
	}
}

// FlightEvent builds an event row for a flight of the given aircraft.
func (b *Builder) FlightEvent(st *state.SimState, flightID string, a catalog.AircraftDef, typ, stand string, amount float64, detail string) FlightEventRow {
	return FlightEventRow{
		SessionID:    b.SessionID,
		FlightID:     flightID,
		AircraftID:   a.ID,
		AircraftName: a.Name(),
		Type:         typ,
		Stand:        stand,
		Amount:       amount,
		Detail:       detail,
		Day:          st.DayIndex,
		ClockMinutes: st.ClockMinutes,
		Timestamp:    b.now().UTC(),
	}
}
