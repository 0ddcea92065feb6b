// Telemetry rows with greptime tags
package telemetry

import (
	"os"
	"time"
)

// Flight event types.
const (
	EventArrival          = "arrival"
	EventDiverted         = "diverted"
	EventMissed           = "missed"
	EventHolding          = "holding"
	EventHoldingTimeout   = "holding_timeout"
	EventDeparture        = "departure"
	EventDepartureQueued  = "departure_queued"
	EventDepartureBlocked = "departure_blocked"
	EventFBO              = "fbo"
	EventUpgrade          = "upgrade"
)

// FlightEventRow records one lifecycle transition of a flight.
type FlightEventRow struct {
	SessionID    string    `json:"session_id"`    // TAG
	FlightID     string    `json:"flight_id"`     // TAG
	AircraftID   string    `json:"aircraft_id"`   // TAG
	AircraftName string    `json:"aircraft_name"` // FIELD
	Type         string    `json:"type"`          // TAG
	Stand        string    `json:"stand,omitempty"`
	Amount       float64   `json:"amount,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	Day          int       `json:"day"`
	ClockMinutes float64   `json:"clock_minutes"`
	Timestamp    time.Time `json:"ts"` // TIME INDEX
}

// FlightEventTableName is the GreptimeDB table for flight events. It can be
// overridden with GREPTIMEDB_EVENTS_TABLE.
var FlightEventTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_EVENTS_TABLE"); env != "" {
		return env
	}
	return "flight_events"
}()

func (FlightEventRow) TableName() string {
	return FlightEventTableName
}
