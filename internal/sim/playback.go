package sim

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"planeidler-sim/internal/telemetry"
)

// ReplayLog replays flight events from r to writer. A speed >0 accelerates playback.
// If speed <= 0, no artificial delay is inserted.
func ReplayLog(r io.Reader, writer FlightWriter, speed float64) error {
	return replay(r, writer, speed, time.Sleep)
}

func replay(r io.Reader, writer FlightWriter, speed float64, sleep func(time.Duration)) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var row telemetry.FlightEventRow
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !prev.IsZero() && speed > 0 {
			diff := row.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				sleep(diff)
			}
		}
		if err := writer.WriteFlightEvent(row); err != nil {
			return err
		}
		prev = row.Timestamp
	}
}

// ReplayLogFile opens a file and replays its flight events.
func ReplayLogFile(path string, writer FlightWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
