package telemetry

import (
	"testing"
	"time"

	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/state"
)

func fixedNow() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

func TestStateRow(t *testing.T) {
	b := NewBuilder("session-1").WithClock(fixedNow)
	st := state.New()
	st.AddIncome(250)
	st.AddReceived()
	st.ProgressionTier = 2

	row := b.StateRow(st, Queues{Holding: 1, DepartureQueue: 2, RunwayBusy: true, StandsTotal: 4, StandsOccupied: 3, TimeScale: 2})

	if row.SessionID != "session-1" {
		t.Errorf("expected session-1, got %s", row.SessionID)
	}
	if row.Clock != "06:00" || !row.Daytime || row.Day != 1 {
		t.Errorf("unexpected clock fields %+v", row)
	}
	if row.Bank != 250 || row.Received != 1 || row.Tier != 2 {
		t.Errorf("unexpected economy fields %+v", row)
	}
	if row.Holding != 1 || row.DepartureQueue != 2 || !row.RunwayBusy || row.StandsOccupied != 3 {
		t.Errorf("unexpected queue fields %+v", row)
	}
	if !row.Timestamp.Equal(fixedNow()) {
		t.Errorf("unexpected timestamp %v", row.Timestamp)
	}
}

func TestFlightEvent(t *testing.T) {
	b := NewBuilder("s").WithClock(fixedNow)
	st := state.New()
	a := catalog.AircraftDef{ID: "c172", DisplayName: "Cessna 172"}

	row := b.FlightEvent(st, "f-1", a, EventArrival, "S-1", 43, "")
	if row.FlightID != "f-1" || row.AircraftID != "c172" || row.AircraftName != "Cessna 172" {
		t.Errorf("unexpected identity fields %+v", row)
	}
	if row.Type != EventArrival || row.Stand != "S-1" || row.Amount != 43 {
		t.Errorf("unexpected event fields %+v", row)
	}
	if row.TableName() != "flight_events" {
		t.Errorf("unexpected table %s", row.TableName())
	}
	if (StateRow{}).TableName() != "airport_state" {
		t.Errorf("unexpected state table")
	}
}
