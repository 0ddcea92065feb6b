package telemetry

import (
	"os"
	"time"
)

// StateRow is a periodic snapshot of the airport.
type StateRow struct {
	SessionID      string    `json:"session_id"` // TAG
	Day            int       `json:"day"`
	Clock          string    `json:"clock"`
	ClockMinutes   float64   `json:"clock_minutes"`
	Daytime        bool      `json:"daytime"`
	Bank           float64   `json:"bank"`
	Received       int       `json:"received"`
	Missed         int       `json:"missed"`
	Diverted       int       `json:"diverted"`
	ActiveAircraft int       `json:"active_aircraft"`
	Holding        int       `json:"holding"`
	DepartureQueue int       `json:"departure_queue"`
	Dwelling       int       `json:"dwelling"`
	RunwayBusy     bool      `json:"runway_busy"`
	StandsTotal    int       `json:"stands_total"`
	StandsOccupied int       `json:"stands_occupied"`
	FBOSlotsUsed   int       `json:"fbo_slots_used"`
	FBOSlotsTotal  int       `json:"fbo_slots_total"`
	Tier           int       `json:"tier"`
	TimeScale      float64   `json:"time_scale"`
	Timestamp      time.Time `json:"ts"` // TIME INDEX
}

// StateTableName is the GreptimeDB table for state rows, overridable with
// GREPTIMEDB_STATE_TABLE.
var StateTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_STATE_TABLE"); env != "" {
		return env
	}
	return "airport_state"
}()

func (StateRow) TableName() string {
	return StateTableName
}
