package scenario

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"planeidler-sim/internal/state"
)

// Trigger events evaluated against the session state.
const (
	EventReceived = "received"
	EventBank     = "bank"
	EventDay      = "day"
)

// Scenario is a scripted progression: ordered phases, each buying a list
// of upgrades and moving on once a trigger fires.
type Scenario struct {
	Name        string  `yaml:"name,omitempty"`
	Description string  `yaml:"description,omitempty"`
	Phases      []Phase `yaml:"phases"`
}

// Phase describes a stage with the upgrades to buy and the triggers for transitions.
type Phase struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Purchases   []string  `yaml:"purchases,omitempty"`
	Triggers    []Trigger `yaml:"triggers,omitempty"`
}

// Trigger moves the scenario to another phase based on an event.
type Trigger struct {
	Event string `yaml:"event"`
	Value int    `yaml:"value"`
	Next  string `yaml:"next"`
}

// Event represents a runtime occurrence that may advance the scenario.
type Event struct {
	Type  string
	Value int
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(s.Phases) == 0 {
		return nil, fmt.Errorf("scenario %q has no phases", s.Name)
	}
	return &s, nil
}

// NextPhase returns the name of the next phase given the current phase and event.
// If no trigger matches, ok will be false.
func (s *Scenario) NextPhase(current string, ev Event) (next string, ok bool) {
	for _, p := range s.Phases {
		if p.Name != current {
			continue
		}
		for _, tr := range p.Triggers {
			if tr.Event == ev.Type && ev.Value >= tr.Value {
				return tr.Next, true
			}
		}
	}
	return "", false
}

func (s *Scenario) phase(name string) (Phase, bool) {
	for _, p := range s.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return Phase{}, false
}

// Purchaser buys upgrades by id.
type Purchaser interface {
	Purchase(id string) error
}

// StateSource reads the session state.
type StateSource interface {
	State() *state.SimState
}

// Player plays a scenario against a running simulation. Purchases that
// fail only for lack of funds are retried on later steps.
type Player struct {
	sc        *Scenario
	buyer     Purchaser
	src       StateSource
	retryable func(error) bool

	mu      sync.Mutex
	current string
	pending []string
	log     *slog.Logger
}

// NewPlayer starts sc at its first phase. retryable reports which purchase
// errors keep the upgrade pending; nil retries nothing.
func NewPlayer(sc *Scenario, buyer Purchaser, src StateSource, retryable func(error) bool) *Player {
	p := &Player{sc: sc, buyer: buyer, src: src, retryable: retryable, log: slog.Default()}
	if len(sc.Phases) > 0 {
		p.enter(sc.Phases[0])
	}
	return p
}

// SetLogger replaces the logger.
func (p *Player) SetLogger(l *slog.Logger) {
	if l != nil {
		p.log = l
	}
}

// Phase is the current phase name.
func (p *Player) Phase() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Pending lists upgrades of the current phase not yet bought.
func (p *Player) Pending() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.pending...)
}

func (p *Player) enter(ph Phase) {
	p.current = ph.Name
	p.pending = append([]string(nil), ph.Purchases...)
}

// Step tries the pending purchases, then evaluates the phase triggers. It
// is shaped to run as a simulator tick hook.
func (p *Player) Step(float64) {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	var kept []string
	for _, id := range pending {
		err := p.buyer.Purchase(id)
		switch {
		case err == nil:
			p.log.Info("scenario purchase", "phase", p.Phase(), "upgrade", id)
		case p.retryable != nil && p.retryable(err):
			kept = append(kept, id)
		default:
			p.log.Warn("scenario purchase dropped", "phase", p.Phase(), "upgrade", id, "err", err)
		}
	}

	st := p.src.State()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = append(kept, p.pending...)
	for _, ev := range []Event{
		{Type: EventReceived, Value: st.Received},
		{Type: EventBank, Value: int(st.Bank)},
		{Type: EventDay, Value: st.DayIndex},
	} {
		next, ok := p.sc.NextPhase(p.current, ev)
		if !ok {
			continue
		}
		ph, found := p.sc.phase(next)
		if !found {
			p.log.Warn("scenario trigger names unknown phase", "phase", p.current, "next", next)
			return
		}
		p.log.Info("scenario phase", "from", p.current, "to", next, "event", ev.Type, "value", ev.Value)
		p.enter(ph)
		return
	}
}
