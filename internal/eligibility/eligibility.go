// Package eligibility holds the pure predicates that decide whether an
// aircraft may use a stand, a runway or the FBO.
package eligibility

import (
	"strings"

	"planeidler-sim/internal/airport"
	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/state"
)

// CanUseStand requires an exact stand class match.
func CanUseStand(standClass string, a catalog.AircraftDef) bool {
	return a.StandClass == standClass
}

// RunwayOk reports whether the runway satisfies the aircraft's requirement.
// Aircraft without requirement data never qualify.
func RunwayOk(rw *airport.Runway, a catalog.AircraftDef) bool {
	req := a.Runway
	if req == nil || rw == nil {
		return false
	}
	if rw.LengthMeters < req.MinLengthMeters {
		return false
	}
	have, need := airport.SurfaceRank(rw.Surface), airport.SurfaceRank(req.Surface)
	if have < 0 || need < 0 || have < need {
		return false
	}
	if req.WidthClass == "wide" && rw.WidthMeters < airport.WideRunwayMeters {
		return false
	}
	return true
}

// EligibleForFbo reports whether a free FBO slot may serve the aircraft.
func EligibleForFbo(a catalog.AircraftDef, st *state.SimState) bool {
	if st == nil || st.FBOSlotsTotal <= 0 || st.FBOSlotsUsed >= st.FBOSlotsTotal {
		return false
	}
	return strings.HasPrefix(a.StandClass, "ga") ||
		a.Class == catalog.ClassGASmall ||
		a.Class == catalog.ClassTurboprop
}
