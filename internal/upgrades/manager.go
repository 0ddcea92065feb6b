// Package upgrades sells catalog upgrades, runs their construction and
// applies their effects to a running simulation.
package upgrades

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"planeidler-sim/internal/catalog"
	"planeidler-sim/internal/events"
	"planeidler-sim/internal/state"
)

var (
	ErrUnknownUpgrade      = errors.New("unknown upgrade")
	ErrMaxPurchases        = errors.New("maximum purchases reached")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrPrerequisiteMissing = errors.New("prerequisite missing")
	ErrTierLocked          = errors.New("tier locked")
)

// Target is the simulation an upgrade is applied to.
type Target interface {
	MutateState(fn func(*state.SimState))
	AddStands(class string, n int)
	ExtendRunway(meters float64)
	WidenRunway(meters float64)
	UpgradeSurface(surface string) bool
	AddParallelRunway(n int)
	Log(format string, args ...any)
	RecordUpgrade(u catalog.UpgradeDef)
	Emit(e events.Event)
}

// Construction is one queued build.
type Construction struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Remaining float64 `json:"remaining_seconds"`
	Total     float64 `json:"total_seconds"`
}

// Status describes an upgrade for listings.
type Status struct {
	catalog.UpgradeDef
	Purchased         int  `json:"purchased"`
	Applied           int  `json:"applied"`
	UnderConstruction bool `json:"under_construction"`
}

// Manager owns purchase counts and the build queue. It never holds its
// lock while calling into the Target.
type Manager struct {
	target Target
	defs   map[string]catalog.UpgradeDef
	order  []string
	log    *slog.Logger

	mu        sync.Mutex
	purchases map[string]int
	applied   map[string]int
	queue     []*Construction
}

// NewManager creates a manager for the catalog upgrades.
func NewManager(defs []catalog.UpgradeDef, target Target) *Manager {
	m := &Manager{
		target:    target,
		defs:      make(map[string]catalog.UpgradeDef, len(defs)),
		log:       slog.Default(),
		purchases: map[string]int{},
		applied:   map[string]int{},
	}
	for _, d := range defs {
		if _, dup := m.defs[d.ID]; !dup {
			m.order = append(m.order, d.ID)
		}
		m.defs[d.ID] = d
	}
	return m
}

// SetLogger replaces the logger.
func (m *Manager) SetLogger(l *slog.Logger) {
	if l != nil {
		m.log = l
	}
}

// Purchase buys one instance of the upgrade. Zero build time applies it
// immediately; otherwise it joins the build queue.
func (m *Manager) Purchase(id string) error {
	def, ok := m.defs[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownUpgrade)
	}

	m.mu.Lock()
	if m.purchases[id] >= max(def.MaxPurchases, 1) {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrMaxPurchases)
	}
	for _, p := range def.Prerequisites {
		if m.applied[p] == 0 {
			m.mu.Unlock()
			return fmt.Errorf("%s requires %s: %w", id, p, ErrPrerequisiteMissing)
		}
	}
	m.purchases[id]++
	m.mu.Unlock()

	var err error
	m.target.MutateState(func(st *state.SimState) {
		switch {
		case st.ProgressionTier < def.TierUnlock:
			err = fmt.Errorf("%s needs tier %d, at %d: %w", id, def.TierUnlock, st.ProgressionTier, ErrTierLocked)
		case !st.Spend(def.Cost):
			err = fmt.Errorf("%s costs %.0f, bank %.0f: %w", id, def.Cost, st.Bank, ErrInsufficientFunds)
		}
	})
	if err != nil {
		m.mu.Lock()
		m.purchases[id]--
		m.mu.Unlock()
		return err
	}

	m.log.Info("upgrade purchased", "upgrade", id, "cost", def.Cost, "build_seconds", def.BuildTimeSeconds)
	m.target.RecordUpgrade(def)
	if def.BuildTimeSeconds <= 0 {
		m.Apply(def)
		return nil
	}
	m.mu.Lock()
	m.queue = append(m.queue, &Construction{ID: id, Name: def.Name(), Remaining: def.BuildTimeSeconds, Total: def.BuildTimeSeconds})
	m.mu.Unlock()
	m.target.Log("[BUILD] %s under construction (%.0fs)", def.Name(), def.BuildTimeSeconds)
	m.target.Emit(events.Event{Kind: events.ConstructionUpdated, Text: id})
	return nil
}

// Step advances every build by dt simulated seconds and applies the ones
// that finish, in queue order.
func (m *Manager) Step(dt float64) {
	m.mu.Lock()
	var done []string
	kept := m.queue[:0]
	for _, c := range m.queue {
		c.Remaining -= dt
		if c.Remaining <= 0 {
			done = append(done, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	m.queue = kept
	m.mu.Unlock()

	for _, id := range done {
		m.Apply(m.defs[id])
	}
}

// Apply executes the effects of def and records it against its tier.
func (m *Manager) Apply(def catalog.UpgradeDef) {
	for _, e := range def.Effects {
		m.applyEffect(def, e)
	}
	m.target.MutateState(func(st *state.SimState) { st.RecordTierUpgrade(def.Tier) })

	m.mu.Lock()
	m.applied[def.ID]++
	m.mu.Unlock()

	m.target.Log("[BUILD] %s complete", def.Name())
	m.target.Emit(events.Event{Kind: events.ConstructionUpdated, Text: def.ID})
}

func (m *Manager) applyEffect(def catalog.UpgradeDef, e catalog.UpgradeEffect) {
	switch e.Type {
	case catalog.EffectMultiplier:
		m.target.MutateState(func(st *state.SimState) {
			switch e.Target {
			case "income":
				st.IncomeMultiplier *= e.Value
			case "arrival_rate":
				st.TrafficRateMultiplier *= e.Value
			}
		})
	case catalog.EffectUnlockNav:
		m.target.MutateState(func(st *state.SimState) {
			switch e.Capability {
			case "night_ops":
				st.NightOpsUnlocked = true
			case "atc":
				st.ATCUnlocked = true
			}
		})
	case catalog.EffectAddFBOSlots:
		m.target.MutateState(func(st *state.SimState) { st.FBOSlotsTotal += max(e.Count, 1) })
	case catalog.EffectAddStand:
		m.target.AddStands(e.StandClass, max(e.Count, 1))
	case catalog.EffectExtendRunway:
		m.target.ExtendRunway(e.LengthMeters)
	case catalog.EffectWidenRunway:
		m.target.WidenRunway(e.WidthMeters)
	case catalog.EffectUpgradeSurface:
		m.target.UpgradeSurface(e.Surface)
	case catalog.EffectAddRunway:
		m.target.AddParallelRunway(max(e.Count, 1))
	case catalog.EffectAddHangar, catalog.EffectAddTaxiExit:
		m.target.Log("[BUILD] %s: %s x%d", def.Name(), e.Type, max(e.Count, 1))
	default:
		m.log.Warn("unhandled upgrade effect", "upgrade", def.ID, "effect", e.Type)
	}
}

// PurchaseCount is the number of purchases of id, built or not.
func (m *Manager) PurchaseCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.purchases[id]
}

// UnderConstruction reports whether a build of id is queued.
func (m *Manager) UnderConstruction(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.queue {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Constructions returns a copy of the build queue.
func (m *Manager) Constructions() []Construction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Construction, 0, len(m.queue))
	for _, c := range m.queue {
		out = append(out, *c)
	}
	return out
}

// List returns every upgrade with its purchase state, by tier then catalog order.
func (m *Manager) List() []Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	building := map[string]bool{}
	for _, c := range m.queue {
		building[c.ID] = true
	}
	out := make([]Status, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, Status{
			UpgradeDef:        m.defs[id],
			Purchased:         m.purchases[id],
			Applied:           m.applied[id],
			UnderConstruction: building[id],
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tier < out[j].Tier })
	return out
}
