package sim

import "planeidler-sim/internal/airport"

// Autopilot stands in for the visual layer in headless runs: it completes
// each path request once the path length divided by its speed has elapsed.
type Autopilot struct {
	taxiSpeed    float64
	patternSpeed float64
	order        []string
	remaining    map[string]float64
}

// NewAutopilot creates an autopilot. Runway maneuvers move at taxiSpeed,
// holding loops and flyovers at patternSpeed (metres per second).
func NewAutopilot(taxiSpeed, patternSpeed float64) *Autopilot {
	if taxiSpeed <= 0 {
		taxiSpeed = 25
	}
	if patternSpeed <= 0 {
		patternSpeed = 55
	}
	return &Autopilot{taxiSpeed: taxiSpeed, patternSpeed: patternSpeed, remaining: map[string]float64{}}
}

// Dispatch starts flying the given requests.
func (a *Autopilot) Dispatch(reqs []PathRequest) {
	for _, r := range reqs {
		speed := a.patternSpeed
		if r.Kind.UsesRunway() {
			speed = a.taxiSpeed
		}
		a.remaining[r.ID] = airport.PathLength(r.Waypoints) / speed
		a.order = append(a.order, r.ID)
	}
}

// Step advances every active path by dt and returns the ids that finished,
// in dispatch order.
func (a *Autopilot) Step(dt float64) []string {
	var done []string
	kept := a.order[:0]
	for _, id := range a.order {
		a.remaining[id] -= dt
		if a.remaining[id] <= 0 {
			delete(a.remaining, id)
			done = append(done, id)
			continue
		}
		kept = append(kept, id)
	}
	a.order = kept
	return done
}
