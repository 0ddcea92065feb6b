package sim

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"planeidler-sim/internal/telemetry"
)

func encodeEvents(t *testing.T, rows []telemetry.FlightEventRow) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	return &buf
}

func TestReplayLog(t *testing.T) {
	rows := []telemetry.FlightEventRow{
		{FlightID: "f1", Type: telemetry.EventArrival, Timestamp: time.Unix(0, 0)},
		{FlightID: "f1", Type: telemetry.EventDeparture, Timestamp: time.Unix(1, 0)},
	}
	cw := &MockFlightWriter{}
	if err := ReplayLog(encodeEvents(t, rows), cw, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if len(cw.Rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(cw.Rows))
	}
	for i, r := range rows {
		if cw.Rows[i].Type != r.Type {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, cw.Rows[i], r)
		}
	}
}

func TestReplayScalesDelays(t *testing.T) {
	rows := []telemetry.FlightEventRow{
		{FlightID: "f1", Timestamp: time.Unix(0, 0)},
		{FlightID: "f2", Timestamp: time.Unix(10, 0)},
		{FlightID: "f3", Timestamp: time.Unix(10, 0)},
	}
	var slept []time.Duration
	cw := &MockFlightWriter{}
	if err := replay(encodeEvents(t, rows), cw, 4, func(d time.Duration) { slept = append(slept, d) }); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(slept) != 1 || slept[0] != 2500*time.Millisecond {
		t.Fatalf("unexpected sleeps %v", slept)
	}
}

func TestReplayMalformed(t *testing.T) {
	if err := ReplayLog(strings.NewReader("{not json"), &MockFlightWriter{}, 0); err == nil {
		t.Fatalf("expected decode error")
	}
}
