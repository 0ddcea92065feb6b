// Package state holds the per-session simulation state: the simulated
// clock, the economy and the rolling daily histories.
package state

import (
	"fmt"
	"math"
)

const (
	MinutesPerDay = 1440.0
	HistoryDays   = 10

	DefaultDayStartMinutes = 6 * 60
	DefaultDayEndMinutes   = 20 * 60
)

// Rates are simulated minutes advanced per simulated second.
type Rates struct {
	Day           float64 `json:"day"`
	NightLights   float64 `json:"night_lights"`
	NightNoLights float64 `json:"night_no_lights"`
}

// DefaultRates are the calibrated clock rates. NightNoLights is a
// calibration constant: an unlit airport skips through the night faster than
// a lit one, since nothing can land there until morning.
var DefaultRates = Rates{Day: 1.4, NightLights: 4.0, NightNoLights: 10.0}

// SimState is owned by one simulation session. The scheduler and the
// upgrade collaborator mutate it; everything else reads copies.
type SimState struct {
	Bank                  float64 `json:"bank"`
	IncomeMultiplier      float64 `json:"income_multiplier"`
	TrafficRateMultiplier float64 `json:"traffic_rate_multiplier"`

	ElapsedSeconds  float64 `json:"elapsed_seconds"`
	ClockMinutes    float64 `json:"clock_minutes"`
	DayIndex        int     `json:"day_index"`
	DayStartMinutes float64 `json:"day_start_minutes"`
	DayEndMinutes   float64 `json:"day_end_minutes"`
	Rates           Rates   `json:"rates"`

	Received       int `json:"received"`
	Missed         int `json:"missed"`
	Diverted       int `json:"diverted"`
	ActiveAircraft int `json:"active_aircraft"`

	DailyIncome   []float64 `json:"daily_income"`
	DailyReceived []float64 `json:"daily_received"`
	DailyMissed   []float64 `json:"daily_missed"`

	ProgressionTier   int         `json:"progression_tier"`
	TierUpgradeCounts map[int]int `json:"tier_upgrade_counts"`
	NightOpsUnlocked  bool        `json:"night_ops_unlocked"`
	ATCUnlocked       bool        `json:"atc_unlocked"`
	FBOSlotsTotal     int         `json:"fbo_slots_total"`
	FBOSlotsUsed      int         `json:"fbo_slots_used"`
}

// New returns a fresh session state starting at the beginning of day 1.
func New() *SimState {
	return &SimState{
		IncomeMultiplier:      1,
		TrafficRateMultiplier: 1,
		ClockMinutes:          DefaultDayStartMinutes,
		DayIndex:              1,
		DayStartMinutes:       DefaultDayStartMinutes,
		DayEndMinutes:         DefaultDayEndMinutes,
		Rates:                 DefaultRates,
		TierUpgradeCounts:     map[int]int{},
	}
}

// IsDaytime reports whether the clock is within [DayStart, DayEnd).
func (s *SimState) IsDaytime() bool {
	return s.ClockMinutes >= s.DayStartMinutes && s.ClockMinutes < s.DayEndMinutes
}

// MinutesPerSecond is the current clock rate.
func (s *SimState) MinutesPerSecond() float64 {
	switch {
	case s.IsDaytime():
		return s.Rates.Day
	case s.NightOpsUnlocked:
		return s.Rates.NightLights
	default:
		return s.Rates.NightNoLights
	}
}

// Advance moves the clock by dt simulated seconds and rolls the daily
// histories over when the clock wraps past midnight.
func (s *SimState) Advance(dt float64) {
	s.ElapsedSeconds += dt
	prev := s.ClockMinutes
	next := math.Mod(prev+dt*s.MinutesPerSecond(), MinutesPerDay)
	if next < 0 {
		next += MinutesPerDay
	}
	s.ClockMinutes = next
	if next < prev {
		s.DayIndex++
		s.startNewDay()
	}
}

// ClockHHMM formats the clock for display.
func (s *SimState) ClockHHMM() string {
	mins := int(s.ClockMinutes) % int(MinutesPerDay)
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

func (s *SimState) AddIncome(amount float64) {
	s.Bank += amount
	s.ensureBuckets()
	s.DailyIncome[len(s.DailyIncome)-1] += amount
}

func (s *SimState) AddReceived() {
	s.ensureBuckets()
	s.Received++
	s.DailyReceived[len(s.DailyReceived)-1]++
}

func (s *SimState) AddMissed() {
	s.ensureBuckets()
	s.Missed++
	s.DailyMissed[len(s.DailyMissed)-1]++
}

// AddDiverted counts a diversion. Diversions also land in the daily missed
// bucket since the histories track only income, received and missed.
func (s *SimState) AddDiverted() {
	s.ensureBuckets()
	s.Diverted++
	s.DailyMissed[len(s.DailyMissed)-1]++
}

// Spend withdraws amount from the bank. It reports false and leaves the
// bank untouched when funds are short.
func (s *SimState) Spend(amount float64) bool {
	if amount < 0 || s.Bank < amount {
		return false
	}
	s.Bank -= amount
	return true
}

// TierCount is the number of applied upgrades of a tier.
func (s *SimState) TierCount(tier int) int {
	return s.TierUpgradeCounts[tier]
}

// RecordTierUpgrade counts an applied upgrade and lifts the progression
// tier to at least its tier.
func (s *SimState) RecordTierUpgrade(tier int) {
	if s.TierUpgradeCounts == nil {
		s.TierUpgradeCounts = map[int]int{}
	}
	if tier > 0 {
		s.TierUpgradeCounts[tier]++
	}
	if tier > s.ProgressionTier {
		s.ProgressionTier = tier
	}
}

// Clone returns a deep copy safe to hand to readers.
func (s *SimState) Clone() *SimState {
	c := *s
	c.DailyIncome = append([]float64(nil), s.DailyIncome...)
	c.DailyReceived = append([]float64(nil), s.DailyReceived...)
	c.DailyMissed = append([]float64(nil), s.DailyMissed...)
	c.TierUpgradeCounts = make(map[int]int, len(s.TierUpgradeCounts))
	for k, v := range s.TierUpgradeCounts {
		c.TierUpgradeCounts[k] = v
	}
	return &c
}

func (s *SimState) ensureBuckets() {
	if len(s.DailyIncome) == 0 {
		s.DailyIncome = append(s.DailyIncome, 0)
		s.DailyReceived = append(s.DailyReceived, 0)
		s.DailyMissed = append(s.DailyMissed, 0)
	}
}

func (s *SimState) startNewDay() {
	s.DailyIncome = pushBucket(s.DailyIncome)
	s.DailyReceived = pushBucket(s.DailyReceived)
	s.DailyMissed = pushBucket(s.DailyMissed)
}

func pushBucket(h []float64) []float64 {
	h = append(h, 0)
	if len(h) > HistoryDays {
		h = append([]float64(nil), h[len(h)-HistoryDays:]...)
	}
	return h
}
