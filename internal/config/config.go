// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogPaths points at the aircraft and upgrade sources.
type CatalogPaths struct {
	Aircraft string `yaml:"aircraft"`
	Upgrades string `yaml:"upgrades"`
}

// Arrivals configures the spawn interval timer.
type Arrivals struct {
	MinIntervalSeconds  float64 `yaml:"min_interval_seconds"`
	MaxIntervalSeconds  float64 `yaml:"max_interval_seconds"`
	InitialDelaySeconds float64 `yaml:"initial_delay_seconds"`
}

// Clock configures day bounds and simulated minutes per second.
type Clock struct {
	DayStartMinutes   float64 `yaml:"day_start_minutes"`
	DayEndMinutes     float64 `yaml:"day_end_minutes"`
	DayRate           float64 `yaml:"day_rate"`
	NightRateLights   float64 `yaml:"night_rate_lights"`
	NightRateNoLights float64 `yaml:"night_rate_no_lights"`
}

// Economy configures starting money and the FBO service.
type Economy struct {
	StartingBank          float64 `yaml:"starting_bank"`
	IncomeMultiplier      float64 `yaml:"income_multiplier"`
	TrafficRateMultiplier float64 `yaml:"traffic_rate_multiplier"`
	FBOChance             float64 `yaml:"fbo_chance"`
	FBOSlots              int     `yaml:"fbo_slots"`
}

// Dwell scales catalog dwell minutes into simulated seconds.
type Dwell struct {
	MinScale float64 `yaml:"min_scale"`
	MaxScale float64 `yaml:"max_scale"`
}

// Holding configures the ATC holding pattern.
type Holding struct {
	TimeoutMinutes float64 `yaml:"timeout_minutes"`
}

// Runway is the starting runway geometry.
type Runway struct {
	Label    string  `yaml:"label"`
	LengthM  float64 `yaml:"length_m"`
	WidthM   float64 `yaml:"width_m"`
	Surface  string  `yaml:"surface"`
	Parallel int     `yaml:"parallel"`
}

// StandGroup declares Count stands of Class.
type StandGroup struct {
	Class string `yaml:"class"`
	Count int    `yaml:"count"`
}

// Capabilities are unlocks granted at session start.
type Capabilities struct {
	NightOps bool `yaml:"night_ops"`
	ATC      bool `yaml:"atc"`
}

// Autopilot completes path requests in headless runs.
type Autopilot struct {
	Enabled      bool    `yaml:"enabled"`
	TaxiSpeed    float64 `yaml:"taxi_speed"`
	PatternSpeed float64 `yaml:"pattern_speed"`
}

// SimulationConfig is the root configuration of a session.
type SimulationConfig struct {
	TickIntervalSeconds float64      `yaml:"tick_interval_seconds"`
	TimeScale           float64      `yaml:"time_scale"`
	Seed                int64        `yaml:"seed"`
	Catalog             CatalogPaths `yaml:"catalog"`
	Arrivals            Arrivals     `yaml:"arrivals"`
	Clock               Clock        `yaml:"clock"`
	Economy             Economy      `yaml:"economy"`
	Dwell               Dwell        `yaml:"dwell"`
	Holding             Holding      `yaml:"holding"`
	Runway              Runway       `yaml:"runway"`
	Stands              []StandGroup `yaml:"stands"`
	Capabilities        Capabilities `yaml:"capabilities"`
	ProgressionTier     int          `yaml:"progression_tier"`
	Autopilot           Autopilot    `yaml:"autopilot"`
	SnapshotSchedule    string       `yaml:"snapshot_schedule"`
	Scenario            string       `yaml:"scenario"`
}

// Load loads YAML config and validates it against a CUE schema
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	// Decoding over the defaults keeps explicit zeros in the file.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *SimulationConfig {
	cfg := &SimulationConfig{
		Arrivals: Arrivals{InitialDelaySeconds: 5},
		Clock:    Clock{DayStartMinutes: 360},
		Economy:  Economy{IncomeMultiplier: 1, FBOChance: 0.35},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values with the calibrated defaults. Fields where
// zero is a valid setting (midnight day start, no income, no FBO, no initial
// delay) are only defaulted by Default.
func (c *SimulationConfig) ApplyDefaults() {
	setDefault(&c.TickIntervalSeconds, 0.2)
	setDefault(&c.TimeScale, 1)
	if c.Catalog.Aircraft == "" {
		c.Catalog.Aircraft = "data/aircraft.json"
	}
	if c.Catalog.Upgrades == "" {
		c.Catalog.Upgrades = "data/upgrades.json"
	}
	setDefault(&c.Arrivals.MinIntervalSeconds, 30)
	setDefault(&c.Arrivals.MaxIntervalSeconds, 60)
	setDefault(&c.Clock.DayEndMinutes, 1200)
	setDefault(&c.Clock.DayRate, 1.4)
	setDefault(&c.Clock.NightRateLights, 4)
	setDefault(&c.Clock.NightRateNoLights, 10)
	setDefault(&c.Economy.TrafficRateMultiplier, 1)
	setDefault(&c.Dwell.MinScale, 15)
	setDefault(&c.Dwell.MaxScale, 30)
	setDefault(&c.Holding.TimeoutMinutes, 30)
	if c.Runway.Label == "" {
		c.Runway.Label = "09/27"
	}
	setDefault(&c.Runway.LengthM, 600)
	setDefault(&c.Runway.WidthM, 30)
	if c.Runway.Surface == "" {
		c.Runway.Surface = "grass"
	}
	if len(c.Stands) == 0 {
		c.Stands = []StandGroup{{Class: "ga_small", Count: 3}}
	}
	setDefault(&c.Autopilot.TaxiSpeed, 25)
	setDefault(&c.Autopilot.PatternSpeed, 55)
	if c.SnapshotSchedule == "" {
		c.SnapshotSchedule = "@every 5s"
	}
}

func setDefault(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}
