package sim

import (
	"sort"

	"planeidler-sim/internal/airport"
	"planeidler-sim/internal/telemetry"
)

// StandView is a read-only copy of one stand.
type StandView struct {
	Label    string       `json:"label"`
	Class    string       `json:"class"`
	Occupant string       `json:"occupant,omitempty"`
	Position airport.Vec3 `json:"position"`
}

// RunwayView describes the runway and its lanes.
type RunwayView struct {
	airport.Runway
	WidthClass string `json:"width_class"`
	Lanes      int    `json:"lanes"`
	BusyLanes  int    `json:"busy_lanes"`
}

// Snapshot returns the current state row.
func (s *Simulator) Snapshot() telemetry.StateRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builder.StateRow(s.state, s.queuesLocked())
}

func (s *Simulator) queuesLocked() telemetry.Queues {
	return telemetry.Queues{
		Holding:        len(s.holding),
		DepartureQueue: len(s.departures),
		Dwelling:       len(s.dwelling),
		RunwayBusy:     s.runwayBusy(),
		StandsTotal:    len(s.airport.Stands.Stands()),
		StandsOccupied: s.airport.Stands.Occupied(),
		TimeScale:      s.timeScale,
	}
}

// Stands returns the stand pool in registration order.
func (s *Simulator) Stands() []StandView {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []StandView
	for _, st := range s.airport.Stands.Stands() {
		out = append(out, StandView{Label: st.Label, Class: st.Class, Occupant: st.Occupant(), Position: st.Position})
	}
	return out
}

// StandStats reports total and free stands of a class.
func (s *Simulator) StandStats(class string) (total, free int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.airport.Stands.StatsForClass(class)
}

// Runway returns the runway geometry and lane usage.
func (s *Simulator) Runway() RunwayView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := RunwayView{Lanes: len(s.lanes)}
	if s.airport.Runway != nil {
		v.Runway = *s.airport.Runway
		v.WidthClass = s.airport.Runway.WidthClass()
	}
	for _, m := range s.lanes {
		if m != "" {
			v.BusyLanes++
		}
	}
	return v
}

// Flights returns the live flights: dwelling, queued for departure and
// holding first in queue order, then the rest by id.
func (s *Simulator) Flights() []FlightView {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]bool{}
	var out []FlightView
	for _, q := range [][]string{s.dwelling, s.departures, s.holding} {
		for _, id := range q {
			if f := s.flights[id]; f != nil && !seen[id] {
				seen[id] = true
				out = append(out, f.view())
			}
		}
	}
	var rest []string
	for id := range s.flights {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		out = append(out, s.flights[id].view())
	}
	return out
}

// PendingManeuvers returns the path requests awaiting completion.
func (s *Simulator) PendingManeuvers() []PathRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PathRequest, 0, len(s.maneuvers))
	for _, m := range s.maneuvers {
		out = append(out, m.req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RecentLog returns up to n of the most recent log lines, oldest first.
func (s *Simulator) RecentLog(n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.logs) {
		n = len(s.logs)
	}
	out := make([]string, n)
	copy(out, s.logs[len(s.logs)-n:])
	return out
}
