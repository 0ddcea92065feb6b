package sim

import (
	"errors"
	"testing"

	"planeidler-sim/internal/telemetry"
)

type stubPurchaseWriter struct {
	MockFlightWriter
	buy    func(string) error
	admin  bool
	states []telemetry.StateRow
}

func (s *stubPurchaseWriter) SetPurchaser(f func(string) error) { s.buy = f }
func (s *stubPurchaseWriter) SetAdminStatus(listening bool)     { s.admin = listening }
func (s *stubPurchaseWriter) WriteState(r telemetry.StateRow) error {
	s.states = append(s.states, r)
	return nil
}

type batchCounter struct {
	MockFlightWriter
	batches int
}

func (b *batchCounter) WriteFlightEvents(rows []telemetry.FlightEventRow) error {
	b.batches++
	b.Rows = append(b.Rows, rows...)
	return nil
}

type failingWriter struct{}

func (failingWriter) WriteFlightEvent(telemetry.FlightEventRow) error { return errors.New("boom") }

func TestMultiWriterFanOut(t *testing.T) {
	plain := &MockFlightWriter{}
	batch := &batchCounter{}
	mw := NewMultiWriter([]FlightWriter{plain, batch}, nil)
	rows := []telemetry.FlightEventRow{{FlightID: "a"}, {FlightID: "b"}}
	if err := mw.WriteFlightEvents(rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(plain.Rows) != 2 || len(batch.Rows) != 2 {
		t.Fatalf("rows not fanned out: %d %d", len(plain.Rows), len(batch.Rows))
	}
	if batch.batches != 1 {
		t.Fatalf("expected one batch call, got %d", batch.batches)
	}
}

func TestMultiWriterStopsOnError(t *testing.T) {
	after := &MockFlightWriter{}
	mw := NewMultiWriter([]FlightWriter{failingWriter{}, after}, nil)
	if err := mw.WriteFlightEvent(telemetry.FlightEventRow{}); err == nil {
		t.Fatalf("expected error")
	}
	if len(after.Rows) != 0 {
		t.Fatalf("writers after a failure should not run")
	}
}

func TestMultiWriterStatesAndCallbacks(t *testing.T) {
	s := &stubPurchaseWriter{}
	mw := NewMultiWriter([]FlightWriter{s}, []StateWriter{s})
	mw.SetPurchaser(func(string) error { return nil })
	if s.buy == nil {
		t.Fatalf("purchaser not forwarded")
	}
	mw.SetAdminStatus(true)
	if !s.admin {
		t.Fatalf("admin status not forwarded")
	}
	if err := mw.WriteStates([]telemetry.StateRow{{Bank: 1}, {Bank: 2}}); err != nil {
		t.Fatalf("write states: %v", err)
	}
	if len(s.states) != 2 {
		t.Fatalf("expected 2 state rows, got %d", len(s.states))
	}
}
