// Package events carries change notifications from the simulator to any
// interested consumer. Publishing never depends on subscribers existing.
package events

import (
	"slices"
	"sync"
)

// Kind identifies what changed.
type Kind int

const (
	BankChanged Kind = iota + 1
	ReceivedChanged
	MissedChanged
	DivertedChanged
	TimeScaleChanged
	ConstructionUpdated
	LogLine
)

func (k Kind) String() string {
	switch k {
	case BankChanged:
		return "bank"
	case ReceivedChanged:
		return "received"
	case MissedChanged:
		return "missed"
	case DivertedChanged:
		return "diverted"
	case TimeScaleChanged:
		return "time_scale"
	case ConstructionUpdated:
		return "construction"
	case LogLine:
		return "log"
	}
	return "unknown"
}

// Event is one notification. Value carries the new number for counter
// and bank changes, Text carries log lines.
type Event struct {
	Kind  Kind
	Value float64
	Text  string
}

// Handler receives events synchronously on the publishing goroutine.
type Handler func(Event)

// Bus is a synchronous fan-out of events.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: map[int]Handler{}}
}

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish delivers e to every current subscriber in subscription order.
// A nil bus drops the event.
func (b *Bus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	handlers := make([]Handler, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()
	for _, h := range handlers {
		h(e)
	}
}

// Subscribers counts the registered handlers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
