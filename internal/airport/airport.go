// Package airport models the physical airport: runway geometry and the
// classed stand pool.
package airport

// Airport bundles the runway, the count of parallel runways and the stands.
type Airport struct {
	Runway   *Runway
	Parallel int
	Stands   *StandManager
}

// StandSpec declares count stands of a class.
type StandSpec struct {
	Class string
	Count int
}

// New builds an airport with stands laid out per spec, in order.
func New(rw *Runway, specs []StandSpec) *Airport {
	if rw == nil {
		rw = DefaultRunway()
	}
	a := &Airport{Runway: rw, Stands: NewStandManager(nil)}
	for _, s := range specs {
		a.Stands.AddStands(s.Class, s.Count)
	}
	return a
}

// RunwayCount is the primary runway plus the parallels.
func (a *Airport) RunwayCount() int {
	return 1 + a.Parallel
}
