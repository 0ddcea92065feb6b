package arrivals

import (
	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/rng"
)

// Weighted pairs an aircraft with its selection weight.
type Weighted struct {
	Aircraft catalog.AircraftDef
	Weight   float64
}

// Weights assigns votes from the per-tier upgrade counts (index 1..4).
// Small GA always gets one base vote; tier 1 adds to small and medium,
// tier 2 to every bucket, tier 3 to medium and large, tier 4 to large
// only. Aircraft without votes are left out.
func Weights(eligible []catalog.AircraftDef, counts [5]int) []Weighted {
	t1, t2, t3, t4 := float64(counts[1]), float64(counts[2]), float64(counts[3]), float64(counts[4])
	var out []Weighted
	for _, a := range eligible {
		small, medium, large := a.IsSmall(), a.IsMedium(), a.IsLarge()
		votes := 0.0
		if small {
			votes++
		}
		if t1 > 0 && (small || medium) {
			votes += t1
		}
		if t2 > 0 && (small || medium || large) {
			votes += t2
		}
		if t3 > 0 && (medium || large) {
			votes += t3
		}
		if t4 > 0 && large {
			votes += t4
		}
		if votes <= 0 {
			continue
		}
		out = append(out, Weighted{Aircraft: a, Weight: votes})
	}
	return out
}

// SelectWeighted draws r in [0, total) and subtracts weights in order
// until r drops to zero or below. Roundoff falls through to the last entry.
func SelectWeighted(entries []Weighted, src rng.Source) catalog.AircraftDef {
	total := 0.0
	for _, e := range entries {
		total += e.Weight
	}
	r := src.Float64() * total
	for _, e := range entries {
		r -= e.Weight
		if r <= 0 {
			return e.Aircraft
		}
	}
	return entries[len(entries)-1].Aircraft
}
