package sim

import (
	"planeidler-sim/internal/airport"
	"planeidler-sim/internal/catalog"
)

// Phase is the lifecycle state of one flight.
type Phase int

const (
	PhaseSpawned Phase = iota
	PhaseHolding
	PhaseAllocated
	PhaseDwelling
	PhaseDepartureQueued
	PhaseDeparting
	PhaseDiverted
	PhaseMissed
	PhaseDeparted
)

var phaseNames = [...]string{
	"spawned", "holding", "allocated", "dwelling", "departure_queued",
	"departing", "diverted", "missed", "departed",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Terminal reports whether the flight has left the scheduler's care.
func (p Phase) Terminal() bool {
	return p == PhaseDiverted || p == PhaseMissed || p == PhaseDeparted
}

// Flight is one aircraft visit. The scheduler owns every field.
type Flight struct {
	ID             string
	Aircraft       catalog.AircraftDef
	Phase          Phase
	Stand          *airport.Stand
	DwellRemaining float64
	HoldMinutes    float64
	FBO            bool

	pending int
}

// FlightView is a read-only copy for displays.
type FlightView struct {
	ID             string  `json:"id"`
	AircraftID     string  `json:"aircraft_id"`
	AircraftName   string  `json:"aircraft_name"`
	Category       string  `json:"category"`
	Phase          string  `json:"phase"`
	Stand          string  `json:"stand,omitempty"`
	DwellRemaining float64 `json:"dwell_remaining,omitempty"`
	HoldMinutes    float64 `json:"hold_minutes,omitempty"`
}

func (f *Flight) view() FlightView {
	v := FlightView{
		ID:             f.ID,
		AircraftID:     f.Aircraft.ID,
		AircraftName:   f.Aircraft.Name(),
		Category:       f.Aircraft.Category(),
		Phase:          f.Phase.String(),
		DwellRemaining: f.DwellRemaining,
		HoldMinutes:    f.HoldMinutes,
	}
	if f.Stand != nil {
		v.Stand = f.Stand.Label
	}
	return v
}

// ManeuverKind classifies a path request.
type ManeuverKind int

const (
	ManeuverArrival ManeuverKind = iota
	ManeuverDeparture
	ManeuverFlyover
	ManeuverHolding
)

func (k ManeuverKind) String() string {
	switch k {
	case ManeuverArrival:
		return "arrival"
	case ManeuverDeparture:
		return "departure"
	case ManeuverFlyover:
		return "flyover"
	case ManeuverHolding:
		return "holding"
	}
	return "unknown"
}

// UsesRunway reports whether the maneuver holds a runway lane.
func (k ManeuverKind) UsesRunway() bool {
	return k == ManeuverArrival || k == ManeuverDeparture
}

// PathRequest asks the host to move an aircraft along Waypoints and to
// call CompleteManeuver(ID) exactly once when it gets there.
type PathRequest struct {
	ID         string         `json:"id"`
	Kind       ManeuverKind   `json:"kind"`
	FlightID   string         `json:"flight_id"`
	AircraftID string         `json:"aircraft_id"`
	Category   string         `json:"category"`
	WidthClass string         `json:"width_class"`
	Waypoints  []airport.Vec3 `json:"waypoints"`
}

type maneuver struct {
	req  PathRequest
	lane int
}
