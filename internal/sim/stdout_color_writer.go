// ColorStdoutWriter prints human-friendly, colorized flight events to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"

	"planeidler-sim/internal/config"
	"planeidler-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

var eventColors = map[string]string{
	telemetry.EventArrival:          colorGreen,
	telemetry.EventDeparture:        colorCyan,
	telemetry.EventDepartureQueued:  colorBlue,
	telemetry.EventHolding:          colorYellow,
	telemetry.EventHoldingTimeout:   colorRed,
	telemetry.EventMissed:           colorRed,
	telemetry.EventDiverted:         colorMagenta,
	telemetry.EventDepartureBlocked: colorMagenta,
	telemetry.EventFBO:              colorGreen,
	telemetry.EventUpgrade:          colorYellow,
}

// ColorStdoutWriter prints rows using ANSI colors. The airport overview
// is printed once before the first row.
type ColorStdoutWriter struct {
	cfg  *config.SimulationConfig
	out  io.Writer
	once sync.Once
	mu   sync.Mutex
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{cfg: cfg, out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}

	fmt.Fprintln(w.out, "Airport Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Runway:\t%s %.0fm x %.0fm %s\n", w.cfg.Runway.Label, w.cfg.Runway.LengthM, w.cfg.Runway.WidthM, w.cfg.Runway.Surface)
	fmt.Fprintf(tw, "Parallel Runways:\t%d\n", w.cfg.Runway.Parallel)
	fmt.Fprintf(tw, "Starting Bank:\t%.0f\n", w.cfg.Economy.StartingBank)
	fmt.Fprintf(tw, "Arrival Interval (s):\t%.0f-%.0f\n", w.cfg.Arrivals.MinIntervalSeconds, w.cfg.Arrivals.MaxIntervalSeconds)
	fmt.Fprintf(tw, "Night Ops:\t%t\n", w.cfg.Capabilities.NightOps)
	fmt.Fprintf(tw, "ATC:\t%t\n", w.cfg.Capabilities.ATC)
	fmt.Fprintf(tw, "Time Scale:\t%.2f\n", w.cfg.TimeScale)
	tw.Flush()

	fmt.Fprintln(w.out, "\nStands:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Class\tCount\n")
	for _, g := range w.cfg.Stands {
		fmt.Fprintf(tw, "%s%s%s\t%d\n", colorCyan, g.Class, colorReset, g.Count)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

// WriteFlightEvent outputs a single flight event in colorized format.
func (w *ColorStdoutWriter) WriteFlightEvent(row telemetry.FlightEventRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	col, ok := eventColors[row.Type]
	if !ok {
		col = colorGray
	}
	fmt.Fprintf(w.out, "%s[day %d %s]%s ", colorGray, row.Day, clockLabel(row.ClockMinutes), colorReset)
	fmt.Fprintf(w.out, "%s%-17s%s ", col, row.Type, colorReset)
	fmt.Fprintf(w.out, "%saircraft=%s%s", colorBlue, row.AircraftName, colorReset)
	if row.Stand != "" {
		fmt.Fprintf(w.out, " %sstand=%s%s", colorCyan, row.Stand, colorReset)
	}
	if row.Amount != 0 {
		fmt.Fprintf(w.out, " %samount=%.0f%s", colorGreen, row.Amount, colorReset)
	}
	if row.Detail != "" {
		fmt.Fprintf(w.out, " %s(%s)%s", colorGray, row.Detail, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteFlightEvents outputs multiple flight events.
func (w *ColorStdoutWriter) WriteFlightEvents(rows []telemetry.FlightEventRow) error {
	for _, r := range rows {
		_ = w.WriteFlightEvent(r)
	}
	return nil
}

// WriteState prints an airport state summary to STDOUT.
func (w *ColorStdoutWriter) WriteState(row telemetry.StateRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()
	runway := colorGreen + "free" + colorReset
	if row.RunwayBusy {
		runway = colorRed + "busy" + colorReset
	}
	fmt.Fprintf(w.out, "%s[day %d %s]%s %sSTATE%s bank=%.0f received=%d missed=%d diverted=%d stands=%d/%d holding=%d dep_queue=%d runway=%s tier=%d\n",
		colorGray, row.Day, row.Clock, colorReset,
		colorYellow, colorReset, row.Bank, row.Received, row.Missed, row.Diverted,
		row.StandsOccupied, row.StandsTotal, row.Holding, row.DepartureQueue, runway, row.Tier)
	return nil
}

func clockLabel(minutes float64) string {
	m := int(minutes) % 1440
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
