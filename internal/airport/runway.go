package airport

// Surface ranks. Unknown surfaces rank -1 and satisfy nothing.
func SurfaceRank(surface string) int {
	switch surface {
	case "grass":
		return 0
	case "asphalt":
		return 1
	case "concrete":
		return 2
	}
	return -1
}

// WideRunwayMeters is the minimum width for a "wide" requirement.
const WideRunwayMeters = 45.0

// Runway is the geometry of the primary runway.
type Runway struct {
	Label        string  `json:"label"`
	LengthMeters float64 `json:"length_m"`
	WidthMeters  float64 `json:"width_m"`
	Surface      string  `json:"surface"`
	Center       Vec3    `json:"center"`
}

// DefaultRunway is the starting grass strip.
func DefaultRunway() *Runway {
	return &Runway{Label: "09/27", LengthMeters: 600, WidthMeters: 30, Surface: "grass"}
}

// Extend lengthens the runway.
func (r *Runway) Extend(meters float64) {
	if meters > 0 {
		r.LengthMeters += meters
	}
}

// Widen adds width to the runway.
func (r *Runway) Widen(meters float64) {
	if meters > 0 {
		r.WidthMeters += meters
	}
}

// WidthClass reports "wide" once the runway can take wide-bodied traffic.
func (r *Runway) WidthClass() string {
	if r.WidthMeters >= WideRunwayMeters {
		return "wide"
	}
	return "narrow"
}

// UpgradeSurface replaces the surface when the new one ranks higher.
// It reports whether the surface changed.
func (r *Runway) UpgradeSurface(surface string) bool {
	if SurfaceRank(surface) <= SurfaceRank(r.Surface) {
		return false
	}
	r.Surface = surface
	return true
}
