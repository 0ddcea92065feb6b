package sim

import (
	"planeidler-sim/internal/airport"
	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/rng"
)

const (
	approachDistance = 250.0
	approachAltitude = 12.0
	holdingAltitude  = 45.0
	holdingLegLong   = 450.0
	holdingLegShort  = 220.0
	flyoverDistance  = 450.0
	laneSpacing      = 120.0
)

func (s *Simulator) runwayCenter(lane int) airport.Vec3 {
	c := airport.Vec3{}
	if s.airport.Runway != nil {
		c = s.airport.Runway.Center
	}
	if lane > 0 {
		c = c.Sub(airport.Right.Scale(laneSpacing * float64(lane)))
	}
	return c
}

// arrivalPath is a straight-in approach, touchdown and taxi to the stand.
func (s *Simulator) arrivalPath(lane int, stand *airport.Stand) []airport.Vec3 {
	c := s.runwayCenter(lane)
	return []airport.Vec3{
		c.Sub(airport.Forward.Scale(approachDistance)).Add(airport.Up.Scale(approachAltitude)),
		c.Add(airport.Up.Scale(0.2)),
		stand.Position.Add(airport.Up.Scale(0.7)),
	}
}

// departurePath taxis from the stand onto the runway and climbs out.
func (s *Simulator) departurePath(lane int, stand *airport.Stand) []airport.Vec3 {
	c := s.runwayCenter(lane)
	return []airport.Vec3{
		stand.Position.Add(airport.Up.Scale(0.5)),
		c.Add(airport.Forward.Scale(15)),
		c.Add(airport.Forward.Scale(300)).Add(airport.Up.Scale(6)),
	}
}

// holdingPath is one closed loop of the rectangular traffic pattern.
func (s *Simulator) holdingPath() []airport.Vec3 {
	c := s.runwayCenter(0)
	half := airport.Forward.Scale(holdingLegLong / 2)
	side := airport.Right.Scale(holdingLegShort)
	up := airport.Up.Scale(holdingAltitude)
	first := c.Sub(half).Add(side).Add(up)
	return []airport.Vec3{
		first,
		c.Add(half).Add(side).Add(up),
		c.Add(half).Sub(side).Add(up),
		c.Sub(half).Sub(side).Add(up),
		first,
	}
}

// flyoverPath crosses the field at cruise altitude in a random direction.
func (s *Simulator) flyoverPath(a catalog.AircraftDef) []airport.Vec3 {
	c := s.runwayCenter(0)
	dir := 1.0
	if s.rand.Float64() > 0.5 {
		dir = -1
	}
	lateralSign := 1.0
	if s.rand.Float64() > 0.5 {
		lateralSign = -1
	}
	lateral := rng.Range(s.rand, 80, 140) * lateralSign
	lo, hi := cruiseBand(a.Class)
	alt := rng.Range(s.rand, lo, hi)

	fwd := airport.Forward.Scale(flyoverDistance * dir)
	side := airport.Right.Scale(lateral)
	return []airport.Vec3{
		c.Sub(fwd).Add(side).Add(airport.Up.Scale(alt)),
		c.Add(airport.Right.Scale(lateral * 0.35)).Add(airport.Up.Scale(alt - 5)),
		c.Add(fwd).Add(side).Add(airport.Up.Scale(alt + 5)),
	}
}

func cruiseBand(class string) (float64, float64) {
	switch class {
	case catalog.ClassGASmall:
		return 30, 55
	case catalog.ClassTurboprop:
		return 40, 65
	case catalog.ClassRegionalJet, catalog.ClassCargoSmall:
		return 50, 80
	case catalog.ClassNarrowbody:
		return 60, 95
	case catalog.ClassWidebody, catalog.ClassCargoWide:
		return 70, 110
	}
	return 30, 55
}

func widthClass(a catalog.AircraftDef) string {
	if a.Runway != nil && a.Runway.WidthClass != "" {
		return a.Runway.WidthClass
	}
	return "narrow"
}
