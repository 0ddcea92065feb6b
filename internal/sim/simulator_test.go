package sim

import (
	"errors"
	"math"
	"testing"
	"time"

	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/config"
	"planeidler-sim/internal/events"
	"planeidler-sim/internal/rng"
	"planeidler-sim/internal/state"
	"planeidler-sim/internal/telemetry"
)

// MockFlightWriter collects flight event rows for validation
type MockFlightWriter struct {
	Rows []telemetry.FlightEventRow
}

func (w *MockFlightWriter) WriteFlightEvent(row telemetry.FlightEventRow) error {
	w.Rows = append(w.Rows, row)
	return nil
}

func (w *MockFlightWriter) count(typ string) int {
	n := 0
	for _, r := range w.Rows {
		if r.Type == typ {
			n++
		}
	}
	return n
}

var (
	cessna = catalog.AircraftDef{
		ID: "c172", DisplayName: "Cessna 172", Class: catalog.ClassGASmall, StandClass: "ga_small",
		Fees:         catalog.Fees{Landing: 10, ParkingPerMinute: 1, FBOService: 5},
		Runway:       &catalog.RunwayReq{MinLengthMeters: 400, Surface: "grass", WidthClass: "narrow"},
		DwellMinutes: catalog.DwellMinutes{Min: 2, Max: 4},
		SpawnWeight:  1,
	}
	airliner = catalog.AircraftDef{
		ID: "a320", Class: catalog.ClassNarrowbody, StandClass: "narrowbody",
		Fees:         catalog.Fees{Landing: 400, ParkingPerMinute: 8},
		Runway:       &catalog.RunwayReq{MinLengthMeters: 1800, Surface: "concrete", WidthClass: "narrow"},
		DwellMinutes: catalog.DwellMinutes{Min: 30, Max: 45},
		SpawnWeight:  1,
	}
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSim(t *testing.T, mutate func(*config.SimulationConfig), aircraft ...catalog.AircraftDef) (*Simulator, *MockFlightWriter) {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	w := &MockFlightWriter{}
	s := NewSimulator("session-test", cfg, &catalog.Catalog{Aircraft: aircraft}, w,
		&rng.Fixed{Values: []float64{0}}, func() time.Time { return fixedTime })
	return s, w
}

// arrive injects an arrival the way the generator would.
func arrive(s *Simulator, a catalog.AircraftDef) (*Flight, []PathRequest) {
	s.mu.Lock()
	f := &Flight{ID: newID(), Aircraft: a, Phase: PhaseSpawned}
	s.flights[f.ID] = f
	s.handleArrival(f)
	s.flushRows()
	out := s.takeOutbox()
	s.unlockAndPublish()
	return f, out
}

func ticksUntil(t *testing.T, s *Simulator, limit int, done func([]PathRequest) bool) []PathRequest {
	t.Helper()
	for i := 0; i < limit; i++ {
		if out := s.Tick(); done(out) {
			return out
		}
	}
	t.Fatalf("condition not reached within %d ticks", limit)
	return nil
}

func hasKind(kind ManeuverKind) func([]PathRequest) bool {
	return func(reqs []PathRequest) bool {
		for _, r := range reqs {
			if r.Kind == kind {
				return true
			}
		}
		return false
	}
}

func TestArrivalAllocatesStandAndEarnsIncome(t *testing.T) {
	s, w := newTestSim(t, nil)
	f, out := arrive(s, cessna)

	if f.Phase != PhaseDwelling {
		t.Fatalf("expected dwelling, got %s", f.Phase)
	}
	if f.Stand == nil || f.Stand.Label != "S-1" {
		t.Fatalf("expected stand S-1, got %+v", f.Stand)
	}
	if f.DwellRemaining != 30 {
		t.Errorf("expected 30s dwell, got %v", f.DwellRemaining)
	}
	st := s.State()
	if st.Received != 1 || st.ActiveAircraft != 1 {
		t.Errorf("unexpected counters %+v", st)
	}
	if st.Bank != 12 {
		t.Errorf("expected income 12, got %v", st.Bank)
	}
	if len(out) != 1 || out[0].Kind != ManeuverArrival || len(out[0].Waypoints) != 3 {
		t.Fatalf("expected one arrival path, got %+v", out)
	}
	if out[0].Category != "small" {
		t.Errorf("expected small category, got %s", out[0].Category)
	}
	if rv := s.Runway(); rv.BusyLanes != 1 {
		t.Errorf("arrival should hold the runway, busy=%d", rv.BusyLanes)
	}
	if w.count(telemetry.EventArrival) != 1 {
		t.Errorf("expected one arrival row, got %+v", w.Rows)
	}
	if w.Rows[0].SessionID != "session-test" || !w.Rows[0].Timestamp.Equal(fixedTime) {
		t.Errorf("row not stamped: %+v", w.Rows[0])
	}
}

func TestArrivalDivertedOnUnsuitableRunway(t *testing.T) {
	s, w := newTestSim(t, func(c *config.SimulationConfig) {
		c.Stands = []config.StandGroup{{Class: "narrowbody", Count: 2}}
	})
	f, out := arrive(s, airliner)

	if f.Phase != PhaseDiverted {
		t.Fatalf("expected diverted, got %s", f.Phase)
	}
	st := s.State()
	if st.Diverted != 1 || st.Missed != 0 || st.Received != 0 {
		t.Errorf("unexpected counters %+v", st)
	}
	if st.DailyMissed[len(st.DailyMissed)-1] != 1 {
		t.Errorf("diversion should land in the daily missed bucket: %v", st.DailyMissed)
	}
	if len(out) != 1 || out[0].Kind != ManeuverFlyover {
		t.Fatalf("expected flyover, got %+v", out)
	}
	if s.Runway().BusyLanes != 0 {
		t.Errorf("flyover must not hold the runway")
	}
	if w.count(telemetry.EventDiverted) != 1 {
		t.Errorf("expected diverted row")
	}
}

func TestArrivalMissedWhenRunwayBusyWithoutATC(t *testing.T) {
	s, w := newTestSim(t, nil)
	arrive(s, cessna)
	f, out := arrive(s, cessna)

	if f.Phase != PhaseMissed {
		t.Fatalf("expected missed, got %s", f.Phase)
	}
	if st := s.State(); st.Missed != 1 || st.Received != 1 {
		t.Errorf("unexpected counters %+v", st)
	}
	if len(out) != 1 || out[0].Kind != ManeuverFlyover {
		t.Fatalf("expected flyover, got %+v", out)
	}
	if w.Rows[len(w.Rows)-1].Detail != "runway busy" {
		t.Errorf("unexpected detail %q", w.Rows[len(w.Rows)-1].Detail)
	}
}

func TestArrivalMissedWhenNoFreeStand(t *testing.T) {
	s, _ := newTestSim(t, func(c *config.SimulationConfig) {
		c.Stands = []config.StandGroup{{Class: "ga_small", Count: 1}}
	})
	_, out := arrive(s, cessna)
	if _, err := s.CompleteManeuver(out[0].ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	f, _ := arrive(s, cessna)
	if f.Phase != PhaseMissed {
		t.Fatalf("expected missed, got %s", f.Phase)
	}
	total, free := s.StandStats("ga_small")
	if total != 1 || free != 0 {
		t.Errorf("unexpected stand stats %d/%d", total, free)
	}
}

func TestHoldingWithATCAndServiceOrder(t *testing.T) {
	s, w := newTestSim(t, func(c *config.SimulationConfig) {
		c.Capabilities.ATC = true
		c.Holding.TimeoutMinutes = 1000
	})
	first, out := arrive(s, cessna)
	arrivalID := out[0].ID
	second, out := arrive(s, cessna)

	if second.Phase != PhaseHolding {
		t.Fatalf("expected holding, got %s", second.Phase)
	}
	if len(out) != 1 || out[0].Kind != ManeuverHolding || len(out[0].Waypoints) != 5 {
		t.Fatalf("expected holding loop, got %+v", out)
	}
	if w.count(telemetry.EventHolding) != 1 {
		t.Errorf("expected holding row")
	}

	// first aircraft finishes dwelling while its arrival still holds the runway
	for i := 0; i < 200 && first.Phase != PhaseDepartureQueued; i++ {
		s.Tick()
	}
	if first.Phase != PhaseDepartureQueued {
		t.Fatalf("expected departure queued, got %s", first.Phase)
	}

	out, err := s.CompleteManeuver(arrivalID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !hasKind(ManeuverArrival)(out) {
		t.Fatalf("holding aircraft should be serviced first, got %+v", out)
	}
	if second.Phase != PhaseDwelling {
		t.Errorf("expected holding aircraft to land, got %s", second.Phase)
	}
	snap := s.Snapshot()
	if snap.Holding != 0 || snap.DepartureQueue != 1 || !snap.RunwayBusy {
		t.Errorf("unexpected queues %+v", snap)
	}
}

func TestHoldingLoopReissuedWhileHolding(t *testing.T) {
	s, _ := newTestSim(t, func(c *config.SimulationConfig) { c.Capabilities.ATC = true })
	arrive(s, cessna)
	_, out := arrive(s, cessna)

	next, err := s.CompleteManeuver(out[0].ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(next) != 1 || next[0].Kind != ManeuverHolding || next[0].ID == out[0].ID {
		t.Fatalf("expected a fresh holding loop, got %+v", next)
	}
}

func TestHoldingTimeout(t *testing.T) {
	s, w := newTestSim(t, func(c *config.SimulationConfig) { c.Capabilities.ATC = true })
	arrive(s, cessna)
	held, _ := arrive(s, cessna)

	// 0.2s ticks at 1.4 min/s age the hold by 0.28 min per tick
	for i := 0; i < 100; i++ {
		s.Tick()
	}
	if held.Phase != PhaseHolding {
		t.Fatalf("expected still holding after 28 minutes, got %s", held.Phase)
	}
	for i := 0; i < 15; i++ {
		s.Tick()
	}
	if held.Phase != PhaseMissed {
		t.Fatalf("expected timeout, got %s", held.Phase)
	}
	if st := s.State(); st.Missed != 1 {
		t.Errorf("expected one miss, got %d", st.Missed)
	}
	if s.Snapshot().Holding != 0 {
		t.Errorf("holding queue not drained")
	}
	if w.count(telemetry.EventHoldingTimeout) != 1 {
		t.Errorf("expected holding timeout row")
	}
}

func TestHoldingTimeoutAtThreshold(t *testing.T) {
	s, w := newTestSim(t, func(c *config.SimulationConfig) { c.Capabilities.ATC = true })
	arrive(s, cessna)
	held, _ := arrive(s, cessna)

	// 30 min / 0.28 min per tick crosses on tick 108
	for i := 1; i <= 200; i++ {
		s.Tick()
		if held.HoldMinutes < 30 {
			if held.Phase != PhaseHolding || s.Snapshot().Holding != 1 {
				t.Fatalf("tick %d: diverted early at %.2f min (phase %s)", i, held.HoldMinutes, held.Phase)
			}
			continue
		}
		if i != 108 {
			t.Fatalf("crossed 30 min on tick %d, want 108", i)
		}
		if held.Phase != PhaseMissed {
			t.Fatalf("tick %d: expected missed at %.2f min, got %s", i, held.HoldMinutes, held.Phase)
		}
		if s.Snapshot().Holding != 0 || s.State().Missed != 1 {
			t.Fatalf("tick %d: divert not applied on the crossing tick", i)
		}
		if w.count(telemetry.EventHoldingTimeout) != 1 {
			t.Fatalf("expected one holding timeout row")
		}
		return
	}
	t.Fatalf("hold never reached 30 minutes")
}

func TestDwellExpiryLaunchesDeparture(t *testing.T) {
	s, w := newTestSim(t, nil)
	f, out := arrive(s, cessna)
	stand := f.Stand
	if _, err := s.CompleteManeuver(out[0].ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	out = ticksUntil(t, s, 200, hasKind(ManeuverDeparture))
	if f.Phase != PhaseDeparting {
		t.Fatalf("expected departing, got %s", f.Phase)
	}
	if stand.Occupied() {
		t.Errorf("stand should be released on departure")
	}
	if st := s.State(); st.ActiveAircraft != 0 {
		t.Errorf("expected no active aircraft, got %d", st.ActiveAircraft)
	}
	if w.count(telemetry.EventDeparture) != 1 {
		t.Errorf("expected departure row")
	}

	var depID string
	for _, r := range out {
		if r.Kind == ManeuverDeparture {
			depID = r.ID
		}
	}
	if _, err := s.CompleteManeuver(depID); err != nil {
		t.Fatalf("complete departure: %v", err)
	}
	if f.Phase != PhaseDeparted {
		t.Errorf("expected departed, got %s", f.Phase)
	}
	if len(s.Flights()) != 0 {
		t.Errorf("departed flight should be retired, got %+v", s.Flights())
	}
}

func TestDepartureQueuedWhileRunwayBusy(t *testing.T) {
	s, w := newTestSim(t, nil)
	f, out := arrive(s, cessna)

	for i := 0; i < 200 && f.Phase != PhaseDepartureQueued; i++ {
		s.Tick()
	}
	if f.Phase != PhaseDepartureQueued {
		t.Fatalf("expected departure queued, got %s", f.Phase)
	}
	if !f.Stand.Occupied() {
		t.Errorf("queued aircraft keeps its stand")
	}
	if w.count(telemetry.EventDepartureQueued) != 1 {
		t.Errorf("expected departure queued row")
	}

	next, err := s.CompleteManeuver(out[0].ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !hasKind(ManeuverDeparture)(next) {
		t.Fatalf("expected departure once the runway frees, got %+v", next)
	}
	if s.Snapshot().DepartureQueue != 0 {
		t.Errorf("departure queue not drained")
	}
}

func TestDepartureBlockedWhenRunwayNoLongerSuitable(t *testing.T) {
	s, w := newTestSim(t, nil)
	f, out := arrive(s, cessna)
	if _, err := s.CompleteManeuver(out[0].ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	s.mu.Lock()
	s.airport.Runway.LengthMeters = 100
	s.mu.Unlock()

	for i := 0; i < 200 && f.Phase == PhaseDwelling; i++ {
		s.Tick()
	}
	if f.Phase != PhaseDiverted {
		t.Fatalf("expected diverted, got %s", f.Phase)
	}
	st := s.State()
	if st.Diverted != 1 || st.ActiveAircraft != 0 {
		t.Errorf("unexpected counters %+v", st)
	}
	if total, free := s.StandStats("ga_small"); free != total {
		t.Errorf("stand not released: %d/%d", free, total)
	}
	if w.count(telemetry.EventDepartureBlocked) != 1 {
		t.Errorf("expected departure blocked row")
	}
}

func TestFBOServiceAndSlotRelease(t *testing.T) {
	s, w := newTestSim(t, func(c *config.SimulationConfig) { c.Economy.FBOSlots = 1 })
	f, out := arrive(s, cessna)

	if !f.FBO {
		t.Fatalf("expected FBO service")
	}
	st := s.State()
	if st.Bank != 17 || st.FBOSlotsUsed != 1 {
		t.Errorf("unexpected economy %+v", st)
	}
	if w.count(telemetry.EventFBO) != 1 {
		t.Errorf("expected fbo row")
	}
	if _, err := s.CompleteManeuver(out[0].ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	second, out := arrive(s, cessna)
	if second.FBO {
		t.Errorf("no slot left for a second service")
	}
	if _, err := s.CompleteManeuver(out[0].ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	ticksUntil(t, s, 200, hasKind(ManeuverDeparture))
	if st := s.State(); st.FBOSlotsUsed != 0 {
		t.Errorf("slot should be returned on departure, used=%d", st.FBOSlotsUsed)
	}
}

func TestIncomeMultiplierNeverNegative(t *testing.T) {
	s, _ := newTestSim(t, nil)
	s.MutateState(func(st *state.SimState) { st.IncomeMultiplier = -2 })
	arrive(s, cessna)
	if st := s.State(); st.Bank != 0 {
		t.Errorf("negative multiplier should earn nothing, bank=%v", st.Bank)
	}
}

func TestZeroConfigValuesHonoured(t *testing.T) {
	s, w := newTestSim(t, func(c *config.SimulationConfig) {
		c.Economy.FBOSlots = 1
		c.Economy.FBOChance = 0
		c.Economy.IncomeMultiplier = 0
		c.Clock.DayStartMinutes = 0
	})
	st := s.State()
	if st.ClockMinutes != 0 || st.DayStartMinutes != 0 || !st.IsDaytime() {
		t.Fatalf("expected the day to start at midnight, got %+v", st)
	}
	f, _ := arrive(s, cessna)
	if f.FBO || w.count(telemetry.EventFBO) != 0 {
		t.Errorf("zero FBO chance should never sell the service")
	}
	if st := s.State(); st.Bank != 0 {
		t.Errorf("zero multiplier should earn nothing, bank=%v", st.Bank)
	}
}

func TestCompleteManeuverUnknown(t *testing.T) {
	s, _ := newTestSim(t, nil)
	if _, err := s.CompleteManeuver("nope"); !errors.Is(err, ErrUnknownManeuver) {
		t.Fatalf("expected ErrUnknownManeuver, got %v", err)
	}
	_, out := arrive(s, cessna)
	if _, err := s.CompleteManeuver(out[0].ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := s.CompleteManeuver(out[0].ID); !errors.Is(err, ErrUnknownManeuver) {
		t.Fatalf("second completion should fail, got %v", err)
	}
}

func TestSetTimeScaleClampsAndNotifies(t *testing.T) {
	s, _ := newTestSim(t, nil)
	var got []events.Event
	s.Bus().Subscribe(func(e events.Event) {
		if e.Kind == events.TimeScaleChanged {
			got = append(got, e)
		}
	})
	if v := s.SetTimeScale(0); v != 0.01 {
		t.Errorf("expected clamp to 0.01, got %v", v)
	}
	if v := s.SetTimeScale(4); v != 4 || s.TimeScale() != 4 {
		t.Errorf("expected 4, got %v", v)
	}
	if len(got) != 2 || got[0].Value != 0.01 {
		t.Errorf("unexpected events %+v", got)
	}
}

func TestSetTimeScaleIgnoresNonFinite(t *testing.T) {
	s, _ := newTestSim(t, nil)
	s.SetTimeScale(3)
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := s.SetTimeScale(v); got != 3 {
			t.Errorf("SetTimeScale(%v) = %v, want 3", v, got)
		}
	}
	if s.TimeScale() != 3 {
		t.Fatalf("time scale changed to %v", s.TimeScale())
	}
	s.Advance(time.Second)
	if st := s.State(); st.ElapsedSeconds == 0 {
		t.Fatalf("simulation stalled after non-finite time scale")
	}
}

func TestNewSimulatorIgnoresNonFiniteTimeScale(t *testing.T) {
	s, _ := newTestSim(t, func(c *config.SimulationConfig) { c.TimeScale = math.NaN() })
	if s.TimeScale() != 1 {
		t.Fatalf("expected default scale 1, got %v", s.TimeScale())
	}
}

func TestAdvanceBoundsCatchUp(t *testing.T) {
	s, _ := newTestSim(t, nil)
	ticks := 0
	s.OnTick(func(float64) { ticks++ })
	s.SetTimeScale(1e12)
	s.Advance(time.Second)
	if ticks != maxCatchUpTicks {
		t.Fatalf("expected %d ticks, got %d", maxCatchUpTicks, ticks)
	}
	s.SetTimeScale(1)
	s.Advance(100 * time.Millisecond)
	if ticks != maxCatchUpTicks {
		t.Fatalf("backlog not dropped, got %d ticks", ticks)
	}
}

func TestAdvanceRunsFixedSteps(t *testing.T) {
	s, _ := newTestSim(t, nil)
	ticks := 0
	s.OnTick(func(dt float64) {
		if dt != 0.2 {
			t.Errorf("unexpected dt %v", dt)
		}
		ticks++
	})
	s.Advance(1100 * time.Millisecond)
	if ticks != 5 {
		t.Fatalf("expected 5 ticks, got %d", ticks)
	}
	s.SetTimeScale(2)
	s.Advance(time.Second)
	if ticks != 15 {
		t.Fatalf("expected 15 ticks after scaled advance, got %d", ticks)
	}
}

func TestParallelRunwayLanes(t *testing.T) {
	s, _ := newTestSim(t, func(c *config.SimulationConfig) { c.Runway.Parallel = 1 })
	_, a := arrive(s, cessna)
	second, b := arrive(s, cessna)
	third, _ := arrive(s, cessna)

	if second.Phase != PhaseDwelling {
		t.Fatalf("second lane should accept an arrival, got %s", second.Phase)
	}
	if third.Phase != PhaseMissed {
		t.Fatalf("both lanes busy, expected missed, got %s", third.Phase)
	}
	if a[0].Waypoints[0] == b[0].Waypoints[0] {
		t.Errorf("lanes should use distinct approaches")
	}
	if rv := s.Runway(); rv.Lanes != 2 || rv.BusyLanes != 2 {
		t.Errorf("unexpected runway view %+v", rv)
	}
}

func TestAutopilotDrivesTrafficHeadless(t *testing.T) {
	s, w := newTestSim(t, func(c *config.SimulationConfig) {
		c.Autopilot.Enabled = true
	}, cessna)

	for i := 0; i < 900; i++ {
		if out := s.Tick(); len(out) != 0 {
			t.Fatalf("autopilot should absorb path requests, got %+v", out)
		}
		st := s.State()
		if occ := s.Snapshot().StandsOccupied; occ != st.ActiveAircraft {
			t.Fatalf("tick %d: %d stands occupied but %d active aircraft", i, occ, st.ActiveAircraft)
		}
	}
	st := s.State()
	if st.Received < 2 {
		t.Errorf("expected traffic, received=%d", st.Received)
	}
	if w.count(telemetry.EventDeparture) == 0 {
		t.Errorf("expected at least one departure, rows=%d", len(w.Rows))
	}
	if len(s.PendingManeuvers()) > 3 {
		t.Errorf("maneuvers leaking: %d pending", len(s.PendingManeuvers()))
	}
}

func TestRecentLogRing(t *testing.T) {
	s, _ := newTestSim(t, nil)
	for i := 0; i < logRingSize+10; i++ {
		s.Log("line %d", i)
	}
	logs := s.RecentLog(0)
	if len(logs) != logRingSize {
		t.Fatalf("expected %d lines, got %d", logRingSize, len(logs))
	}
	if last := s.RecentLog(1); last[0] != "line 209" {
		t.Errorf("unexpected last line %q", last[0])
	}
}

func TestInfrastructureMutations(t *testing.T) {
	s, _ := newTestSim(t, nil)
	s.AddStands("ga_medium", 2)
	if total, _ := s.StandStats("ga_medium"); total != 2 {
		t.Errorf("expected 2 medium stands, got %d", total)
	}
	s.ExtendRunway(400)
	s.WidenRunway(15)
	if !s.UpgradeSurface("asphalt") {
		t.Errorf("asphalt should rank above grass")
	}
	if s.UpgradeSurface("grass") {
		t.Errorf("surface must never downgrade")
	}
	s.AddParallelRunway(1)
	rv := s.Runway()
	if rv.LengthMeters != 1000 || rv.WidthMeters != 45 || rv.Surface != "asphalt" || rv.Lanes != 2 {
		t.Errorf("unexpected runway %+v", rv)
	}
	if rv.WidthClass != "wide" {
		t.Errorf("expected wide runway, got %s", rv.WidthClass)
	}
}
