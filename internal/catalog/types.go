// Package catalog holds the immutable aircraft and upgrade definitions a
// simulation session is built from.
package catalog

// Aircraft classes known to the traffic mix.
const (
	ClassGASmall     = "ga_small"
	ClassTurboprop   = "turboprop"
	ClassRegionalJet = "regional_jet"
	ClassNarrowbody  = "narrowbody"
	ClassWidebody    = "widebody"
	ClassCargoSmall  = "cargo_small"
	ClassCargoWide   = "cargo_wide"
)

// DwellMinutes is the catalog dwell range in simulated minutes.
type DwellMinutes struct {
	Min float64 `json:"min" yaml:"min" validate:"gte=0"`
	Max float64 `json:"max" yaml:"max" validate:"gte=0"`
}

// Fees is the fee schedule charged to a visiting aircraft.
type Fees struct {
	Landing          float64 `json:"landing" yaml:"landing" validate:"gte=0"`
	ParkingPerMinute float64 `json:"parkingPerMinute" yaml:"parkingPerMinute" validate:"gte=0"`
	FBOService       float64 `json:"fboService" yaml:"fboService"`
}

// RunwayReq describes the runway an aircraft needs.
type RunwayReq struct {
	MinLengthMeters float64 `json:"minLengthMeters" yaml:"minLengthMeters" validate:"gte=0"`
	Surface         string  `json:"surface" yaml:"surface"`
	WidthClass      string  `json:"widthClass" yaml:"widthClass"`
}

// AircraftDef is one aircraft type of the catalog.
type AircraftDef struct {
	ID           string       `json:"id" yaml:"id" validate:"required"`
	DisplayName  string       `json:"displayName" yaml:"displayName"`
	Class        string       `json:"class" yaml:"class" validate:"required"`
	Fees         Fees         `json:"fees" yaml:"fees"`
	Runway       *RunwayReq   `json:"runway,omitempty" yaml:"runway,omitempty" validate:"omitempty"`
	StandClass   string       `json:"standClass" yaml:"standClass" validate:"required"`
	DwellMinutes DwellMinutes `json:"dwellMinutes" yaml:"dwellMinutes"`
	SpawnWeight  float64      `json:"spawnWeight" yaml:"spawnWeight" validate:"gte=0"`
	TierUnlock   int          `json:"tierUnlock" yaml:"tierUnlock" validate:"gte=0"`
	MTOWKg       int          `json:"mtowKg" yaml:"mtowKg" validate:"gte=0"`
}

// Name returns the display name, falling back to the id.
func (a AircraftDef) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.ID
}

// IsSmall reports whether the aircraft belongs to the small GA bucket.
func (a AircraftDef) IsSmall() bool {
	return a.Class == ClassGASmall
}

// IsMedium reports whether the aircraft belongs to the medium bucket.
func (a AircraftDef) IsMedium() bool {
	return a.Class == ClassTurboprop || a.StandClass == "ga_medium"
}

// IsLarge reports whether the aircraft belongs to the large bucket.
func (a AircraftDef) IsLarge() bool {
	switch a.Class {
	case ClassRegionalJet, ClassNarrowbody, ClassWidebody, ClassCargoWide, ClassCargoSmall:
		return true
	}
	return false
}

// Category buckets the aircraft into small, medium or large. Unknown
// classes are treated as small.
func (a AircraftDef) Category() string {
	switch {
	case a.IsSmall():
		return "small"
	case a.IsMedium():
		return "medium"
	case a.IsLarge():
		return "large"
	}
	return "small"
}

// Upgrade effect types.
const (
	EffectMultiplier     = "multiplier"
	EffectUnlockNav      = "unlock_nav"
	EffectAddStand       = "add_stand"
	EffectExtendRunway   = "extend_runway"
	EffectWidenRunway    = "widen_runway"
	EffectUpgradeSurface = "upgrade_surface"
	EffectAddRunway      = "add_runway"
	EffectAddFBOSlots    = "add_fbo_slots"
	EffectAddHangar      = "add_hangar"
	EffectAddTaxiExit    = "add_taxi_exit"
)

// UpgradeEffect is one typed effect of an upgrade.
type UpgradeEffect struct {
	Type         string  `json:"type" yaml:"type" validate:"required"`
	Target       string  `json:"target,omitempty" yaml:"target,omitempty"`
	Capability   string  `json:"capability,omitempty" yaml:"capability,omitempty"`
	StandClass   string  `json:"standClass,omitempty" yaml:"standClass,omitempty"`
	Count        int     `json:"count,omitempty" yaml:"count,omitempty" validate:"gte=0"`
	Value        float64 `json:"value,omitempty" yaml:"value,omitempty"`
	LengthMeters float64 `json:"lengthMeters,omitempty" yaml:"lengthMeters,omitempty" validate:"gte=0"`
	WidthMeters  float64 `json:"widthMeters,omitempty" yaml:"widthMeters,omitempty" validate:"gte=0"`
	Surface      string  `json:"surface,omitempty" yaml:"surface,omitempty"`
	WidthClass   string  `json:"widthClass,omitempty" yaml:"widthClass,omitempty"`
}

// UpgradeDef is one purchasable upgrade.
type UpgradeDef struct {
	ID               string          `json:"id" yaml:"id" validate:"required"`
	DisplayName      string          `json:"displayName" yaml:"displayName"`
	Category         string          `json:"category" yaml:"category"`
	Cost             float64         `json:"cost" yaml:"cost" validate:"gte=0"`
	BuildTimeSeconds float64         `json:"buildTimeSeconds" yaml:"buildTimeSeconds" validate:"gte=0"`
	MaxPurchases     int             `json:"maxPurchases" yaml:"maxPurchases" validate:"gte=0"`
	Prerequisites    []string        `json:"prerequisites,omitempty" yaml:"prerequisites,omitempty"`
	Effects          []UpgradeEffect `json:"effects" yaml:"effects" validate:"dive"`
	Tier             int             `json:"tier" yaml:"tier" validate:"gte=0,lte=4"`
	TierUnlock       int             `json:"tierUnlock" yaml:"tierUnlock" validate:"gte=0"`
}

// Name returns the display name, falling back to the id.
func (u UpgradeDef) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}
