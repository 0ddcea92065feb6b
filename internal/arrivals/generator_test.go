package arrivals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/rng"
	"planeidler-sim/internal/state"
)

var (
	c172  = catalog.AircraftDef{ID: "c172", Class: "ga_small", StandClass: "ga_small"}
	pc12  = catalog.AircraftDef{ID: "pc12", Class: "turboprop", StandClass: "ga_medium", TierUnlock: 1}
	a320  = catalog.AircraftDef{ID: "a320", Class: "narrowbody", StandClass: "narrowbody", TierUnlock: 1}
	fleet = []catalog.AircraftDef{c172, pc12, a320}
)

func TestSelectWeightedCumulativeSubtraction(t *testing.T) {
	a := catalog.AircraftDef{ID: "A"}
	b := catalog.AircraftDef{ID: "B"}
	entries := []Weighted{{a, 1}, {b, 3}}

	assert.Equal(t, "B", SelectWeighted(entries, &rng.Fixed{Values: []float64{0.5}}).ID)
	// r == weight of A lands exactly on zero and picks A.
	assert.Equal(t, "A", SelectWeighted(entries, &rng.Fixed{Values: []float64{0.25}}).ID)
	assert.Equal(t, "A", SelectWeighted(entries, &rng.Fixed{Values: []float64{0}}).ID)
	assert.Equal(t, "B", SelectWeighted(entries, &rng.Fixed{Values: []float64{0.999}}).ID)
}

func TestSelectWeightedRoundoffFallsToLast(t *testing.T) {
	entries := []Weighted{{catalog.AircraftDef{ID: "A"}, 1}, {catalog.AircraftDef{ID: "B"}, 1}}
	// A source outside [0,1) leaves r positive after every subtraction.
	assert.Equal(t, "B", SelectWeighted(entries, &rng.Fixed{Values: []float64{1.5}}).ID)
}

func TestWeightsByTierCounts(t *testing.T) {
	w := Weights(fleet, [5]int{})
	require.Len(t, w, 1)
	assert.Equal(t, "c172", w[0].Aircraft.ID)
	assert.Equal(t, 1.0, w[0].Weight)

	w = Weights(fleet, [5]int{1: 2})
	require.Len(t, w, 2)
	assert.Equal(t, 3.0, w[0].Weight)
	assert.Equal(t, "pc12", w[1].Aircraft.ID)
	assert.Equal(t, 2.0, w[1].Weight)

	w = Weights(fleet, [5]int{2: 1, 3: 1, 4: 2})
	require.Len(t, w, 3)
	assert.Equal(t, 2.0, w[0].Weight) // base + t2
	assert.Equal(t, 2.0, w[1].Weight) // t2 + t3
	assert.Equal(t, 4.0, w[2].Weight) // t2 + t3 + t4
}

func TestUpdateEmptyCatalogLeavesTimer(t *testing.T) {
	g := New(DefaultConfig, nil, &rng.Fixed{})
	assert.Empty(t, g.Update(100, state.New()))
	timer, next := g.Pending()
	assert.Zero(t, timer)
	assert.Equal(t, 5.0, next)
}

func TestUpdateInitialDelay(t *testing.T) {
	g := New(DefaultConfig, fleet, &rng.Fixed{Values: []float64{0}})
	st := state.New()
	assert.Empty(t, g.Update(4.9, st))
	spawns := g.Update(0.2, st)
	require.Len(t, spawns, 1)
	assert.Equal(t, "c172", spawns[0].ID)
	timer, next := g.Pending()
	assert.InDelta(t, 0.1, timer, 1e-9)
	assert.Equal(t, 30.0, next)
}

func TestUpdateCatchUp(t *testing.T) {
	g := New(DefaultConfig, fleet, &rng.Fixed{Values: []float64{0}})
	spawns := g.Update(65, state.New())
	assert.Len(t, spawns, 3)
}

func TestUpdateNightSuppression(t *testing.T) {
	g := New(DefaultConfig, fleet, &rng.Fixed{Values: []float64{0}})
	st := state.New()
	st.ClockMinutes = 1300
	assert.Empty(t, g.Update(100, st))
	timer, _ := g.Pending()
	assert.Equal(t, 100.0, timer)

	st.NightOpsUnlocked = true
	assert.Len(t, g.Update(0, st), 4)
}

func TestUpdateTierFilter(t *testing.T) {
	g := New(DefaultConfig, []catalog.AircraftDef{pc12}, &rng.Fixed{Values: []float64{0}})
	st := state.New()
	st.RecordTierUpgrade(0)
	assert.Empty(t, g.Update(10, st))

	st.RecordTierUpgrade(1)
	g.Reset()
	spawns := g.Update(10, st)
	require.Len(t, spawns, 1)
	assert.Equal(t, "pc12", spawns[0].ID)
}

func TestTrafficRateScalesInterval(t *testing.T) {
	g := New(DefaultConfig, fleet, &rng.Fixed{Values: []float64{0}})
	st := state.New()
	st.TrafficRateMultiplier = 2
	g.Update(5, st)
	_, next := g.Pending()
	assert.Equal(t, 15.0, next)

	st.TrafficRateMultiplier = 0
	g.Update(15, st)
	_, next = g.Pending()
	assert.InDelta(t, 300.0, next, 1e-9)
}
