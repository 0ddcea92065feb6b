// Simulator scheduling arrivals, stands, the runway and departures
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"planeidler-sim/internal/airport"
	"planeidler-sim/internal/arrivals"
	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/config"
	"planeidler-sim/internal/events"
	"planeidler-sim/internal/rng"
	"planeidler-sim/internal/state"
	"planeidler-sim/internal/telemetry"
)

// ErrUnknownManeuver is returned when a completion names no pending maneuver.
var ErrUnknownManeuver = errors.New("unknown maneuver")

const (
	minTimeScale = 0.01
	logRingSize  = 200
	// maxCatchUpTicks bounds the fixed steps one Advance may run; the
	// remaining backlog is dropped.
	maxCatchUpTicks = 1000
)

// validTimeScale reports whether value can be applied as a time scale.
func validTimeScale(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

// TickHook runs after every tick, outside the simulator lock, with the
// tick length in simulated seconds.
type TickHook func(dt float64)

// Simulator is the central scheduler. It owns the runway lanes, the stand
// occupancy, the flight arena and its queues.
type Simulator struct {
	sessionID   string
	cfg         *config.SimulationConfig
	catalog     *catalog.Catalog
	airport     *airport.Airport
	state       *state.SimState
	generator   *arrivals.Generator
	builder     *telemetry.Builder
	writer      FlightWriter
	bus         *events.Bus
	log         *slog.Logger
	rand        rng.Source
	now         func() time.Time
	autopilot   *Autopilot
	hooks       []TickHook
	tickSeconds float64
	timeScale   float64
	accumulator float64
	holdTimeout float64

	flights    map[string]*Flight
	holding    []string
	departures []string
	dwelling   []string
	lanes      []string
	maneuvers  map[string]*maneuver
	outbox     []PathRequest
	rows       []telemetry.FlightEventRow
	published  []events.Event
	logs       []string

	mu sync.Mutex
}

// NewSimulator builds the airport and session state described by cfg.
func NewSimulator(sessionID string, cfg *config.SimulationConfig, cat *catalog.Catalog, writer FlightWriter, r rng.Source, now func() time.Time) *Simulator {
	if cfg == nil {
		cfg = config.Default()
	}
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	if r == nil {
		r = rng.New(cfg.Seed)
	}
	if now == nil {
		now = time.Now
	}

	rw := &airport.Runway{
		Label:        cfg.Runway.Label,
		LengthMeters: cfg.Runway.LengthM,
		WidthMeters:  cfg.Runway.WidthM,
		Surface:      cfg.Runway.Surface,
	}
	specs := make([]airport.StandSpec, 0, len(cfg.Stands))
	for _, g := range cfg.Stands {
		specs = append(specs, airport.StandSpec{Class: g.Class, Count: g.Count})
	}
	ap := airport.New(rw, specs)
	ap.Parallel = cfg.Runway.Parallel

	st := state.New()
	st.Bank = cfg.Economy.StartingBank
	st.IncomeMultiplier = cfg.Economy.IncomeMultiplier
	st.TrafficRateMultiplier = cfg.Economy.TrafficRateMultiplier
	st.FBOSlotsTotal = cfg.Economy.FBOSlots
	st.DayStartMinutes = cfg.Clock.DayStartMinutes
	st.DayEndMinutes = cfg.Clock.DayEndMinutes
	st.ClockMinutes = cfg.Clock.DayStartMinutes
	st.Rates = state.Rates{Day: cfg.Clock.DayRate, NightLights: cfg.Clock.NightRateLights, NightNoLights: cfg.Clock.NightRateNoLights}
	st.NightOpsUnlocked = cfg.Capabilities.NightOps
	st.ATCUnlocked = cfg.Capabilities.ATC
	st.ProgressionTier = cfg.ProgressionTier

	gen := arrivals.New(arrivals.Config{
		MinIntervalSeconds:  cfg.Arrivals.MinIntervalSeconds,
		MaxIntervalSeconds:  cfg.Arrivals.MaxIntervalSeconds,
		InitialDelaySeconds: cfg.Arrivals.InitialDelaySeconds,
	}, cat.Aircraft, r)

	s := &Simulator{
		sessionID:   sessionID,
		cfg:         cfg,
		catalog:     cat,
		airport:     ap,
		state:       st,
		generator:   gen,
		builder:     telemetry.NewBuilder(sessionID).WithClock(now),
		writer:      writer,
		bus:         events.NewBus(),
		log:         slog.Default(),
		rand:        r,
		now:         now,
		tickSeconds: cfg.TickIntervalSeconds,
		timeScale:   1,
		holdTimeout: cfg.Holding.TimeoutMinutes,
		flights:     map[string]*Flight{},
		maneuvers:   map[string]*maneuver{},
		lanes:       make([]string, ap.RunwayCount()),
	}
	if validTimeScale(cfg.TimeScale) {
		s.timeScale = max(minTimeScale, cfg.TimeScale)
	}
	if cfg.Autopilot.Enabled {
		s.autopilot = NewAutopilot(cfg.Autopilot.TaxiSpeed, cfg.Autopilot.PatternSpeed)
	}
	if len(cat.Aircraft) == 0 {
		s.log.Warn("catalog has no aircraft, no arrivals will be generated")
	}
	return s
}

// SetLogger replaces the logger used for scheduler debug output.
func (s *Simulator) SetLogger(l *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l != nil {
		s.log = l
	}
}

// SetAutopilot installs or removes (nil) the host-side autopilot.
func (s *Simulator) SetAutopilot(a *Autopilot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autopilot = a
}

// OnTick registers a hook run after every tick.
func (s *Simulator) OnTick(h TickHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Bus exposes change notifications.
func (s *Simulator) Bus() *events.Bus { return s.bus }

// SessionID identifies this simulation run.
func (s *Simulator) SessionID() string { return s.sessionID }

// Catalog returns the definitions the session was built from.
func (s *Simulator) Catalog() *catalog.Catalog { return s.catalog }

// TickInterval is the simulated length of one tick.
func (s *Simulator) TickInterval() time.Duration {
	return time.Duration(s.tickSeconds * float64(time.Second))
}

// SetTimeScale clamps value to at least 0.01 and returns the applied scale.
// NaN and infinite values are ignored and the current scale is returned.
func (s *Simulator) SetTimeScale(value float64) float64 {
	s.mu.Lock()
	if !validTimeScale(value) {
		applied, log := s.timeScale, s.log
		s.mu.Unlock()
		log.Warn("ignoring non-finite time scale", "value", value)
		return applied
	}
	s.timeScale = max(minTimeScale, value)
	applied := s.timeScale
	s.emit(events.Event{Kind: events.TimeScaleChanged, Value: applied})
	s.unlockAndPublish()
	return applied
}

// TimeScale returns the current time scale.
func (s *Simulator) TimeScale() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeScale
}

// State returns a copy of the session state.
func (s *Simulator) State() *state.SimState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// MutateState runs fn against the live session state between ticks.
func (s *Simulator) MutateState(fn func(*state.SimState)) {
	s.mu.Lock()
	bank := s.state.Bank
	fn(s.state)
	if s.state.Bank != bank {
		s.emit(events.Event{Kind: events.BankChanged, Value: s.state.Bank})
	}
	s.unlockAndPublish()
}

// AddStands appends n stands of class to the pool.
func (s *Simulator) AddStands(class string, n int) {
	s.mu.Lock()
	added := s.airport.Stands.AddStands(class, n)
	s.logf("[BUILD] %d %s stand(s) opened", len(added), class)
	s.unlockAndPublish()
}

// ExtendRunway lengthens the primary runway.
func (s *Simulator) ExtendRunway(meters float64) {
	s.mu.Lock()
	if s.airport.Runway != nil {
		s.airport.Runway.Extend(meters)
		s.logf("[BUILD] runway extended to %.0fm", s.airport.Runway.LengthMeters)
	}
	s.unlockAndPublish()
}

// WidenRunway widens the primary runway.
func (s *Simulator) WidenRunway(meters float64) {
	s.mu.Lock()
	if s.airport.Runway != nil {
		s.airport.Runway.Widen(meters)
		s.logf("[BUILD] runway widened to %.0fm", s.airport.Runway.WidthMeters)
	}
	s.unlockAndPublish()
}

// UpgradeSurface paves the primary runway when surface ranks higher.
func (s *Simulator) UpgradeSurface(surface string) bool {
	s.mu.Lock()
	changed := s.airport.Runway != nil && s.airport.Runway.UpgradeSurface(surface)
	if changed {
		s.logf("[BUILD] runway surface now %s", surface)
	}
	s.unlockAndPublish()
	return changed
}

// AddParallelRunway adds n runway lanes of capacity.
func (s *Simulator) AddParallelRunway(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.airport.Parallel += n
	s.lanes = append(s.lanes, make([]string, n)...)
	s.logf("[BUILD] %d parallel runway(s) opened", n)
	s.unlockAndPublish()
}

// Log records a free-text line from a collaborator.
func (s *Simulator) Log(format string, args ...any) {
	s.mu.Lock()
	s.logf(format, args...)
	s.unlockAndPublish()
}

// RecordUpgrade writes an upgrade flight event row.
func (s *Simulator) RecordUpgrade(u catalog.UpgradeDef) {
	s.mu.Lock()
	row := s.builder.FlightEvent(s.state, "", catalog.AircraftDef{}, telemetry.EventUpgrade, "", u.Cost, u.ID)
	row.AircraftName = u.Name()
	s.rows = append(s.rows, row)
	s.flushRows()
	s.unlockAndPublish()
}

// Emit publishes an event through the simulator's bus after the current
// critical section, keeping ordering with scheduler events.
func (s *Simulator) Emit(e events.Event) {
	s.mu.Lock()
	s.emit(e)
	s.unlockAndPublish()
}

func (s *Simulator) emit(e events.Event) {
	s.published = append(s.published, e)
}

// unlockAndPublish releases the lock, then delivers queued events so
// handlers may call back into the simulator.
func (s *Simulator) unlockAndPublish() {
	pending := s.published
	s.published = nil
	s.mu.Unlock()
	for _, e := range pending {
		s.bus.Publish(e)
	}
}

func (s *Simulator) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	s.logs = append(s.logs, line)
	if len(s.logs) > logRingSize {
		s.logs = append([]string(nil), s.logs[len(s.logs)-logRingSize:]...)
	}
	s.log.Debug(line, "day", s.state.DayIndex, "clock", s.state.ClockHHMM())
	s.emit(events.Event{Kind: events.LogLine, Text: line})
}

func newID() string {
	return uuid.New().String()
}
