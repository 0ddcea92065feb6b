// Package arrivals decides when aircraft arrive and which type each one is.
package arrivals

import (
	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/rng"
	"planeidler-sim/internal/state"
)

// Config sets the spawn interval bounds in simulated seconds.
type Config struct {
	MinIntervalSeconds  float64
	MaxIntervalSeconds  float64
	InitialDelaySeconds float64
}

// DefaultConfig is the calibrated arrival cadence.
var DefaultConfig = Config{MinIntervalSeconds: 30, MaxIntervalSeconds: 60, InitialDelaySeconds: 5}

// Generator is an interval timer that yields arrivals with catch-up: when
// several intervals elapse in one update, each one yields an arrival.
type Generator struct {
	cfg       Config
	aircraft  []catalog.AircraftDef
	rand      rng.Source
	timer     float64
	nextSpawn float64
}

// New creates a generator over the catalog aircraft.
func New(cfg Config, aircraft []catalog.AircraftDef, r rng.Source) *Generator {
	if cfg.MaxIntervalSeconds < cfg.MinIntervalSeconds {
		cfg.MaxIntervalSeconds = cfg.MinIntervalSeconds
	}
	g := &Generator{cfg: cfg, aircraft: aircraft, rand: r}
	g.Reset()
	return g
}

// Reset rearms the initial delay.
func (g *Generator) Reset() {
	g.timer = 0
	g.nextSpawn = g.cfg.InitialDelaySeconds
}

// Pending reports the accumulated timer and the current interval.
func (g *Generator) Pending() (timer, next float64) {
	return g.timer, g.nextSpawn
}

// Update advances the timer by dt and returns the aircraft that arrive.
// At night without night operations the timer accumulates but nothing
// spawns. An empty catalog leaves the timer untouched.
func (g *Generator) Update(dt float64, st *state.SimState) []catalog.AircraftDef {
	if len(g.aircraft) == 0 {
		return nil
	}
	g.timer += dt
	if st != nil && !st.IsDaytime() && !st.NightOpsUnlocked {
		return nil
	}
	var spawns []catalog.AircraftDef
	for g.timer >= g.nextSpawn {
		if a, ok := g.pick(st); ok {
			spawns = append(spawns, a)
		}
		g.timer -= g.nextSpawn
		g.nextSpawn = g.interval(st)
		if g.nextSpawn <= 0 {
			break
		}
	}
	return spawns
}

func (g *Generator) interval(st *state.SimState) float64 {
	rate := 1.0
	if st != nil {
		rate = max(0.1, st.TrafficRateMultiplier)
	}
	return rng.Range(g.rand, g.cfg.MinIntervalSeconds, g.cfg.MaxIntervalSeconds) / rate
}

func (g *Generator) pick(st *state.SimState) (catalog.AircraftDef, bool) {
	tier := 0
	var counts [5]int
	if st != nil {
		tier = st.ProgressionTier
		for t := 1; t <= 4; t++ {
			counts[t] = st.TierCount(t)
		}
	}
	var eligible []catalog.AircraftDef
	for _, a := range g.aircraft {
		if a.TierUnlock <= tier {
			eligible = append(eligible, a)
		}
	}
	entries := Weights(eligible, counts)
	if len(entries) == 0 {
		return catalog.AircraftDef{}, false
	}
	return SelectWeighted(entries, g.rand), true
}
