package sim

import (
	"context"
	"fmt"
	"time"

	"planeidler-sim/internal/airport"
	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/eligibility"
	"planeidler-sim/internal/events"
	"planeidler-sim/internal/logging"
	"planeidler-sim/internal/rng"
	"planeidler-sim/internal/telemetry"
)

// Run drives the simulator from wall-clock time until the context is done.
// Path requests not absorbed by the autopilot are handed to onPaths.
func (s *Simulator) Run(ctx context.Context, onPaths func([]PathRequest)) {
	log := logging.FromContext(ctx)
	log.Info("starting simulator", "session_id", s.sessionID, "tick_interval", s.TickInterval(), "time_scale", s.TimeScale())
	wall := s.TickInterval()
	if wall <= 0 {
		wall = 200 * time.Millisecond
	}
	ticker := time.NewTicker(wall)
	defer ticker.Stop()
	last := s.now()

	for {
		select {
		case <-ticker.C:
			now := s.now()
			reqs := s.Advance(now.Sub(last))
			last = now
			if len(reqs) > 0 && onPaths != nil {
				onPaths(reqs)
			}
		case <-ctx.Done():
			log.Info("stopping simulator")
			return
		}
	}
}

// Advance feeds real elapsed time, scaled by the time scale, into the
// fixed-step accumulator and runs every tick that became due.
func (s *Simulator) Advance(real time.Duration) []PathRequest {
	var out []PathRequest
	s.mu.Lock()
	s.accumulator += real.Seconds() * s.timeScale
	for n := 0; s.tickSeconds > 0 && s.accumulator >= s.tickSeconds; n++ {
		if n == maxCatchUpTicks {
			s.log.Warn("simulator falling behind, dropping backlog", "seconds", s.accumulator)
			s.accumulator = 0
			break
		}
		s.accumulator -= s.tickSeconds
		out = append(out, s.tickLocked()...)
		hooks := s.hooks
		s.unlockAndPublish()
		for _, h := range hooks {
			h(s.tickSeconds)
		}
		s.mu.Lock()
	}
	s.unlockAndPublish()
	return out
}

// Tick runs exactly one fixed step and returns the path requests the host
// must complete. With an autopilot installed it returns none.
func (s *Simulator) Tick() []PathRequest {
	s.mu.Lock()
	out := s.tickLocked()
	hooks := s.hooks
	s.unlockAndPublish()
	for _, h := range hooks {
		h(s.tickSeconds)
	}
	return out
}

func (s *Simulator) tickLocked() []PathRequest {
	dt := s.tickSeconds

	for _, a := range s.generator.Update(dt, s.state) {
		f := &Flight{ID: newID(), Aircraft: a, Phase: PhaseSpawned}
		s.flights[f.ID] = f
		s.handleArrival(f)
	}

	s.processDwell(dt)
	for range s.lanes {
		if !s.serviceRunwayQueue() {
			break
		}
	}

	s.state.Advance(dt)
	s.updateHolding(dt)

	if s.autopilot != nil {
		s.autopilot.Dispatch(s.takeOutbox())
		for _, id := range s.autopilot.Step(dt) {
			if err := s.completeLocked(id); err != nil {
				s.log.Warn("autopilot completion failed", "maneuver", id, "err", err)
			}
			s.autopilot.Dispatch(s.takeOutbox())
		}
	}

	s.flushRows()
	return s.takeOutbox()
}

// CompleteManeuver reports that the host finished a path request. It frees
// the runway lane the maneuver held and services the runway queue.
func (s *Simulator) CompleteManeuver(id string) ([]PathRequest, error) {
	s.mu.Lock()
	err := s.completeLocked(id)
	s.flushRows()
	out := s.takeOutbox()
	s.unlockAndPublish()
	return out, err
}

func (s *Simulator) completeLocked(id string) error {
	m, ok := s.maneuvers[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownManeuver)
	}
	delete(s.maneuvers, id)
	f := s.flights[m.req.FlightID]
	if f != nil {
		f.pending--
	}

	switch m.req.Kind {
	case ManeuverHolding:
		if f != nil && f.Phase == PhaseHolding {
			s.issue(f, ManeuverHolding, -1, s.holdingPath())
		}
	case ManeuverDeparture:
		if f != nil {
			f.Phase = PhaseDeparted
		}
	}
	if f != nil {
		s.retire(f)
	}
	if m.lane >= 0 {
		s.lanes[m.lane] = ""
		s.serviceRunwayQueue()
	}
	return nil
}

// handleArrival resolves one arrival, fresh or released from holding.
func (s *Simulator) handleArrival(f *Flight) {
	a := f.Aircraft
	rw := s.airport.Runway
	if rw != nil && !eligibility.RunwayOk(rw, a) {
		f.Phase = PhaseDiverted
		s.state.AddDiverted()
		s.emit(events.Event{Kind: events.DivertedChanged, Value: float64(s.state.Diverted)})
		s.logf("Arrival diverted: runway unsuitable for %s", a.ID)
		s.record(f, telemetry.EventDiverted, "", 0, "runway unsuitable")
		s.issue(f, ManeuverFlyover, -1, s.flyoverPath(a))
		return
	}

	busy := s.runwayBusy()
	if busy && !s.state.ATCUnlocked {
		s.miss(f, fmt.Sprintf("Arrival diverted: runway in use and no ATC for %s", a.ID), "runway busy")
		return
	}
	if busy {
		f.Phase = PhaseHolding
		f.HoldMinutes = 0
		s.holding = append(s.holding, f.ID)
		s.logf("[ATC] Queued arrival for %s in holding pattern", a.Name())
		s.record(f, telemetry.EventHolding, "", 0, "")
		s.issue(f, ManeuverHolding, -1, s.holdingPath())
		return
	}

	stand := s.airport.Stands.FindFree(func(class string) bool {
		return eligibility.CanUseStand(class, a)
	})
	if stand == nil {
		s.miss(f, fmt.Sprintf("Arrival diverted: no free stand for %s", a.StandClass), "no free stand")
		return
	}
	if err := stand.Occupy(f.ID); err != nil {
		s.log.Error("stand allocation failed", "stand", stand.Label, "err", err)
		s.miss(f, fmt.Sprintf("Arrival diverted: stand %s unavailable", stand.Label), "stand unavailable")
		return
	}
	f.Phase = PhaseAllocated
	f.Stand = stand
	s.state.AddReceived()
	s.state.ActiveAircraft++
	s.emit(events.Event{Kind: events.ReceivedChanged, Value: float64(s.state.Received)})
	amount := s.addIncome(a)
	s.record(f, telemetry.EventArrival, stand.Label, amount, "")
	s.tryFBO(f)

	dwellMin := max(a.DwellMinutes.Min, 1)
	dwellMax := max(a.DwellMinutes.Max, dwellMin)
	f.DwellRemaining = rng.Range(s.rand, dwellMin*s.cfg.Dwell.MinScale, dwellMax*s.cfg.Dwell.MaxScale)
	f.Phase = PhaseDwelling
	s.dwelling = append(s.dwelling, f.ID)

	lane := s.freeLane()
	s.issue(f, ManeuverArrival, lane, s.arrivalPath(lane, stand))
	s.logf("[ARR] %s arrived -> %s (%s)", a.Name(), stand.Label, a.StandClass)
}

func (s *Simulator) miss(f *Flight, line, detail string) {
	f.Phase = PhaseMissed
	s.state.AddMissed()
	s.emit(events.Event{Kind: events.MissedChanged, Value: float64(s.state.Missed)})
	s.logf("%s", line)
	s.record(f, telemetry.EventMissed, "", 0, detail)
	s.issue(f, ManeuverFlyover, -1, s.flyoverPath(f.Aircraft))
}

func (s *Simulator) addIncome(a catalog.AircraftDef) float64 {
	landing := a.Fees.Landing
	parking := a.Fees.ParkingPerMinute * max(a.DwellMinutes.Min, 1)
	amount := (landing + parking) * max(0, s.state.IncomeMultiplier)
	s.state.AddIncome(amount)
	s.emit(events.Event{Kind: events.BankChanged, Value: s.state.Bank})
	s.logf("[+$]%.0f bank=%.0f", amount, s.state.Bank)
	return amount
}

func (s *Simulator) tryFBO(f *Flight) {
	if !eligibility.EligibleForFbo(f.Aircraft, s.state) {
		return
	}
	if s.rand.Float64() >= s.cfg.Economy.FBOChance {
		return
	}
	s.state.FBOSlotsUsed++
	f.FBO = true
	fee := max(f.Aircraft.Fees.FBOService, 0) * max(0, s.state.IncomeMultiplier)
	s.state.AddIncome(fee)
	s.emit(events.Event{Kind: events.BankChanged, Value: s.state.Bank})
	s.logf("[FBO] %s used FBO (+%.0f)", f.Aircraft.Name(), fee)
	s.record(f, telemetry.EventFBO, standLabel(f.Stand), fee, "")
}

// processDwell counts down every dwell timer in registration order.
func (s *Simulator) processDwell(dt float64) {
	remaining := s.dwelling[:0]
	var expired []*Flight
	for _, id := range s.dwelling {
		f := s.flights[id]
		if f == nil {
			continue
		}
		f.DwellRemaining -= dt
		if f.DwellRemaining > 0 {
			remaining = append(remaining, id)
			continue
		}
		f.DwellRemaining = 0
		expired = append(expired, f)
	}
	s.dwelling = remaining
	for _, f := range expired {
		if s.runwayBusy() {
			f.Phase = PhaseDepartureQueued
			s.departures = append(s.departures, f.ID)
			s.record(f, telemetry.EventDepartureQueued, standLabel(f.Stand), 0, "")
			continue
		}
		s.launchDeparture(f)
	}
}

// serviceRunwayQueue makes at most one runway acquisition, preferring
// aircraft in the holding pattern over parked departures. It reports
// whether a queue entry was taken.
func (s *Simulator) serviceRunwayQueue() bool {
	if s.runwayBusy() {
		return false
	}
	if len(s.holding) > 0 {
		id := s.holding[0]
		s.holding = s.holding[1:]
		if f := s.flights[id]; f != nil {
			f.Phase = PhaseSpawned
			s.handleArrival(f)
		}
		return true
	}
	if len(s.departures) > 0 {
		id := s.departures[0]
		s.departures = s.departures[1:]
		if f := s.flights[id]; f != nil {
			s.launchDeparture(f)
		}
		return true
	}
	return false
}

func (s *Simulator) launchDeparture(f *Flight) {
	stand := f.Stand
	if stand == nil {
		return
	}
	a := f.Aircraft
	if rw := s.airport.Runway; rw != nil && !eligibility.RunwayOk(rw, a) {
		s.release(f)
		f.Phase = PhaseDiverted
		s.state.AddDiverted()
		s.emit(events.Event{Kind: events.DivertedChanged, Value: float64(s.state.Diverted)})
		s.logf("Departure blocked: runway unsuitable for %s", a.ID)
		s.record(f, telemetry.EventDepartureBlocked, stand.Label, 0, "runway unsuitable")
		s.retire(f)
		return
	}
	lane := s.freeLane()
	path := s.departurePath(lane, stand)
	s.release(f)
	f.Phase = PhaseDeparting
	s.issue(f, ManeuverDeparture, lane, path)
	s.logf("[DEP] %s departed from %s", a.Name(), stand.Label)
	s.record(f, telemetry.EventDeparture, stand.Label, 0, "")
}

// release vacates the stand and returns the FBO slot of a leaving flight.
func (s *Simulator) release(f *Flight) {
	if f.Stand != nil {
		if err := f.Stand.Vacate(f.ID); err != nil {
			s.log.Error("stand release failed", "stand", f.Stand.Label, "err", err)
		}
	}
	s.state.ActiveAircraft = max(0, s.state.ActiveAircraft-1)
	if f.FBO {
		s.state.FBOSlotsUsed = max(0, s.state.FBOSlotsUsed-1)
		f.FBO = false
	}
}

// updateHolding ages holding entries at the clock rate and drops those
// that reached the timeout.
func (s *Simulator) updateHolding(dt float64) {
	if len(s.holding) == 0 {
		return
	}
	rate := s.state.MinutesPerSecond()
	kept := s.holding[:0]
	for _, id := range s.holding {
		f := s.flights[id]
		if f == nil {
			continue
		}
		f.HoldMinutes += dt * rate
		if f.HoldMinutes < s.holdTimeout {
			kept = append(kept, id)
			continue
		}
		f.Phase = PhaseMissed
		s.state.AddMissed()
		s.emit(events.Event{Kind: events.MissedChanged, Value: float64(s.state.Missed)})
		s.logf("Arrival diverted: holding timeout (%.0f min) for %s", s.holdTimeout, f.Aircraft.Name())
		s.record(f, telemetry.EventHoldingTimeout, "", 0, "")
		s.retire(f)
	}
	s.holding = kept
}

func (s *Simulator) runwayBusy() bool {
	for _, m := range s.lanes {
		if m == "" {
			return false
		}
	}
	return true
}

func (s *Simulator) freeLane() int {
	for i, m := range s.lanes {
		if m == "" {
			return i
		}
	}
	return -1
}

// issue registers a maneuver and queues its path request. A lane >= 0
// is held busy until the maneuver completes.
func (s *Simulator) issue(f *Flight, kind ManeuverKind, lane int, path []airport.Vec3) {
	if !kind.UsesRunway() {
		lane = -1
	}
	req := PathRequest{
		ID:         newID(),
		Kind:       kind,
		FlightID:   f.ID,
		AircraftID: f.Aircraft.ID,
		Category:   f.Aircraft.Category(),
		WidthClass: widthClass(f.Aircraft),
		Waypoints:  path,
	}
	s.maneuvers[req.ID] = &maneuver{req: req, lane: lane}
	if lane >= 0 {
		s.lanes[lane] = req.ID
	}
	f.pending++
	s.outbox = append(s.outbox, req)
}

// retire drops a terminal flight once none of its maneuvers are pending.
func (s *Simulator) retire(f *Flight) {
	if f.Phase.Terminal() && f.pending <= 0 {
		delete(s.flights, f.ID)
	}
}

func (s *Simulator) takeOutbox() []PathRequest {
	out := s.outbox
	s.outbox = nil
	return out
}

func (s *Simulator) record(f *Flight, typ, stand string, amount float64, detail string) {
	s.rows = append(s.rows, s.builder.FlightEvent(s.state, f.ID, f.Aircraft, typ, stand, amount, detail))
}

// flushRows writes pending flight events, in one batch when supported.
func (s *Simulator) flushRows() {
	rows := s.rows
	s.rows = nil
	if len(rows) == 0 || s.writer == nil {
		return
	}
	if err := WriteFlightEvents(s.writer, rows); err != nil {
		s.log.Error("flight event write failed", "rows", len(rows), "err", err)
	}
}

func standLabel(st *airport.Stand) string {
	if st == nil {
		return ""
	}
	return st.Label
}
