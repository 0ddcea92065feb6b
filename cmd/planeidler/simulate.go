package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"planeidler-sim/internal/admin"
	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/config"
	"planeidler-sim/internal/events"
	"planeidler-sim/internal/logging"
	"planeidler-sim/internal/scenario"
	"planeidler-sim/internal/sim"
	"planeidler-sim/internal/telemetry"
	"planeidler-sim/internal/upgrades"
)

var (
	simPrintOnly  bool
	simTUI        bool
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simLogFile    string
	simAdminAddr  string
	simScenario   string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the airport simulation",
	Long:  "simulate runs an airport session in real time, writing flight events and periodic state snapshots.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, closer, err := newLogger(simTUI && logPath == "")
		if err != nil {
			return err
		}
		defer closer.Close()

		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}
		if err := applyEnvOverrides(cfg); err != nil {
			return err
		}
		if !cfg.Autopilot.Enabled {
			log.Warn("autopilot disabled in config; enabling it for the headless run")
			cfg.Autopilot.Enabled = true
		}

		cat, err := catalog.Load(cfg.Catalog.Aircraft, cfg.Catalog.Upgrades)
		if err != nil {
			log.Warn("catalog loaded with errors", "err", err)
		}
		log.Info("catalog loaded", "aircraft", len(cat.Aircraft), "upgrades", len(cat.Upgrades))

		out, err := newWriters(cfg, writerOptions{printOnly: simPrintOnly, tui: simTUI, logFile: simLogFile})
		if err != nil {
			return err
		}
		defer out.cleanup()

		sessionID := envOr("SESSION_ID", uuid.NewString())
		simulator := sim.NewSimulator(sessionID, cfg, cat, out.flights, nil, nil)
		simulator.SetLogger(log)

		manager := upgrades.NewManager(cat.Upgrades, simulator)
		manager.SetLogger(log)
		simulator.OnTick(manager.Step)

		if p, ok := out.flights.(sim.UpgradePurchaser); ok {
			p.SetPurchaser(manager.Purchase)
		}
		if out.tui != nil {
			unsubscribe := simulator.Bus().Subscribe(func(e events.Event) {
				if e.Kind == events.LogLine {
					out.tui.WriteLog(e.Text)
				}
			})
			defer unsubscribe()
		}

		if name := firstNonEmpty(simScenario, cfg.Scenario); name != "" {
			sc, err := resolveScenario(name)
			if err != nil {
				return err
			}
			player := scenario.NewPlayer(sc, manager, simulator, retryablePurchase)
			player.SetLogger(log)
			simulator.OnTick(player.Step)
			log.Info("scenario loaded", "name", sc.Name, "phases", len(sc.Phases))
		}

		snapshots, err := scheduleSnapshots(cfg.SnapshotSchedule, simulator, out.states, log)
		if err != nil {
			return err
		}
		snapshots.Start()
		defer snapshots.Stop()

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		ctx = logging.NewContext(ctx, log)

		if simAdminAddr != "" {
			srv := admin.NewServer(simulator, manager)
			go func() {
				log.Info("admin UI listening", "addr", simAdminAddr)
				setAdminStatus(out.flights, true)
				if err := srv.Start(simAdminAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("admin server failed", "err", err)
				}
				setAdminStatus(out.flights, false)
			}()
		}

		simulator.Run(ctx, nil)

		if err := out.states.WriteState(simulator.Snapshot()); err != nil {
			log.Warn("final snapshot failed", "err", err)
		}
		log.Info("airport simulation stopped", "session_id", sessionID)
		return nil
	},
}

// applyEnvOverrides reads TICK_INTERVAL and the --tick flag into cfg.
func applyEnvOverrides(cfg *config.SimulationConfig) error {
	if simTick > 0 {
		cfg.TickIntervalSeconds = simTick.Seconds()
	}
	if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
		d, err := time.ParseDuration(envTick)
		if err != nil {
			return fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid TICK_INTERVAL %q: must be positive", envTick)
		}
		cfg.TickIntervalSeconds = d.Seconds()
	}
	return nil
}

// resolveScenario accepts a built-in arc name or a YAML path.
func resolveScenario(name string) (*scenario.Scenario, error) {
	if sc, ok := scenario.BuiltIn()[name]; ok {
		return &sc, nil
	}
	return scenario.Load(name)
}

// retryablePurchase keeps purchases that may succeed later.
func retryablePurchase(err error) bool {
	return errors.Is(err, upgrades.ErrInsufficientFunds) ||
		errors.Is(err, upgrades.ErrTierLocked) ||
		errors.Is(err, upgrades.ErrPrerequisiteMissing)
}

type snapshotter interface {
	Snapshot() telemetry.StateRow
}

// scheduleSnapshots writes a state row on every cron tick.
func scheduleSnapshots(spec string, src snapshotter, w sim.StateWriter, log *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := w.WriteState(src.Snapshot()); err != nil {
			log.Warn("state snapshot failed", "err", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("snapshot schedule %q: %w", spec, err)
	}
	return c, nil
}

func setAdminStatus(w sim.FlightWriter, listening bool) {
	if aw, ok := w.(sim.AdminStatusWriter); ok {
		aw.SetAdminStatus(listening)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print events to STDOUT instead of writing to GreptimeDB")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Show the interactive airport board")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 0, "Fixed tick length (e.g. 200ms); overrides the config")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Also export flight events and state rows as JSONL")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", ":8080", "Admin API listen address; empty disables it")
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "", "Autoplay scenario: built-in arc name or YAML path")
}
