package sim

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"planeidler-sim/internal/telemetry"
)

const defaultGreptimePort = 4001

// greptimeClient is the subset of the ingester client the writer uses.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes flight events and state snapshots to GreptimeDB
// via the ingester client. Tables are created on first write.
type GreptimeDBWriter struct {
	client     greptimeClient
	eventTable string
	stateTable string
	timeout    time.Duration
	log        *slog.Logger
}

// NewGreptimeDBWriter connects to endpoint (host or host:port) and database.
// Empty table names fall back to the telemetry defaults.
func NewGreptimeDBWriter(endpoint, database, eventTable, stateTable string) (*GreptimeDBWriter, error) {
	host, port := endpoint, defaultGreptimePort
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("greptime endpoint %q: %w", endpoint, err)
		}
		host, port = h, n
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	if eventTable == "" {
		eventTable = telemetry.FlightEventTableName
	}
	if stateTable == "" {
		stateTable = telemetry.StateTableName
	}
	return &GreptimeDBWriter{
		client:     client,
		eventTable: eventTable,
		stateTable: stateTable,
		timeout:    5 * time.Second,
		log:        slog.Default(),
	}, nil
}

// WriteFlightEvent inserts a single flight event.
func (w *GreptimeDBWriter) WriteFlightEvent(row telemetry.FlightEventRow) error {
	return w.WriteFlightEvents([]telemetry.FlightEventRow{row})
}

// WriteFlightEvents inserts multiple flight events.
func (w *GreptimeDBWriter) WriteFlightEvents(rows []telemetry.FlightEventRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.eventTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("session_id", types.STRING)
	tbl.AddTagColumn("aircraft_id", types.STRING)
	tbl.AddTagColumn("type", types.STRING)
	tbl.AddFieldColumn("flight_id", types.STRING)
	tbl.AddFieldColumn("aircraft_name", types.STRING)
	tbl.AddFieldColumn("stand", types.STRING)
	tbl.AddFieldColumn("amount", types.FLOAT64)
	tbl.AddFieldColumn("detail", types.STRING)
	tbl.AddFieldColumn("day", types.INT64)
	tbl.AddFieldColumn("clock_minutes", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.SessionID, r.AircraftID, r.Type, r.FlightID, r.AircraftName,
			r.Stand, r.Amount, r.Detail, int64(r.Day), r.ClockMinutes, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl, w.eventTable, len(rows))
}

// WriteState inserts a single airport state row.
func (w *GreptimeDBWriter) WriteState(row telemetry.StateRow) error {
	return w.WriteStates([]telemetry.StateRow{row})
}

// WriteStates inserts multiple airport state rows.
func (w *GreptimeDBWriter) WriteStates(rows []telemetry.StateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.stateTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("session_id", types.STRING)
	tbl.AddFieldColumn("day", types.INT64)
	tbl.AddFieldColumn("clock", types.STRING)
	tbl.AddFieldColumn("clock_minutes", types.FLOAT64)
	tbl.AddFieldColumn("daytime", types.BOOLEAN)
	tbl.AddFieldColumn("bank", types.FLOAT64)
	tbl.AddFieldColumn("received", types.INT64)
	tbl.AddFieldColumn("missed", types.INT64)
	tbl.AddFieldColumn("diverted", types.INT64)
	tbl.AddFieldColumn("active_aircraft", types.INT64)
	tbl.AddFieldColumn("holding", types.INT64)
	tbl.AddFieldColumn("departure_queue", types.INT64)
	tbl.AddFieldColumn("dwelling", types.INT64)
	tbl.AddFieldColumn("runway_busy", types.BOOLEAN)
	tbl.AddFieldColumn("stands_total", types.INT64)
	tbl.AddFieldColumn("stands_occupied", types.INT64)
	tbl.AddFieldColumn("fbo_slots_used", types.INT64)
	tbl.AddFieldColumn("fbo_slots_total", types.INT64)
	tbl.AddFieldColumn("tier", types.INT64)
	tbl.AddFieldColumn("time_scale", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.SessionID, int64(r.Day), r.Clock, r.ClockMinutes, r.Daytime, r.Bank,
			int64(r.Received), int64(r.Missed), int64(r.Diverted), int64(r.ActiveAircraft),
			int64(r.Holding), int64(r.DepartureQueue), int64(r.Dwelling), r.RunwayBusy,
			int64(r.StandsTotal), int64(r.StandsOccupied), int64(r.FBOSlotsUsed), int64(r.FBOSlotsTotal),
			int64(r.Tier), r.TimeScale, r.Timestamp); err != nil {
			return err
		}
	}
	return w.write(tbl, w.stateTable, len(rows))
}

func (w *GreptimeDBWriter) write(tbl *table.Table, name string, n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.log.Error("greptime write failed", "table", name, "rows", n, "err", err)
		return err
	}
	w.log.Debug("greptime write", "table", name, "rows", n)
	return nil
}
